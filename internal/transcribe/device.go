package transcribe

import (
	"context"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"

	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/domain"
)

// DetectDevice picks the compute device once. "auto" asks the GPU query tool
// and falls back to CPU when it is missing or lists nothing.
func DetectDevice(ctx context.Context, runner command.Runner, queryTool, preference string) domain.Device {
	switch preference {
	case config.DeviceCPU:
		return domain.Device{Kind: domain.DeviceCPU}
	case config.DeviceCUDA:
		name, _ := queryGPUName(ctx, runner, queryTool)
		return domain.Device{Kind: domain.DeviceCUDA, Name: name}
	}

	name, ok := queryGPUName(ctx, runner, queryTool)
	if !ok {
		logger.Infof(ctx, "no accelerator found, using CPU")
		return domain.Device{Kind: domain.DeviceCPU}
	}
	logger.Infof(ctx, "using GPU: %s", name)
	return domain.Device{Kind: domain.DeviceCUDA, Name: name}
}

func queryGPUName(ctx context.Context, runner command.Runner, queryTool string) (string, bool) {
	if queryTool == "" {
		return "", false
	}
	result, err := runner.Run(ctx, queryTool, "--query-gpu=name", "--format=csv,noheader")
	if err != nil {
		logger.Debugf(ctx, "%s: %v", queryTool, err)
		return "", false
	}
	for _, line := range strings.Split(result.Stdout, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			return name, true
		}
	}
	return "", false
}
