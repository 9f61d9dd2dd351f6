package service

import (
	"context"

	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/repository"
)

// DefaultLogRetention é usada quando nenhuma retenção é configurada.
const DefaultLogRetention int32 = 14

// CWLogsService manipula a lógica de negócio para CloudWatch Logs.
type CWLogsService struct {
	CWLogsRepo *repository.CWLogsRepository
	Log        logging.LogManager
}

// EnsureLogGroup garante que o Log Group /aws/lambda/<função> exista com a
// retenção dada e devolve o nome dele.
func (s *CWLogsService) EnsureLogGroup(ctx context.Context, functionName string, retentionDays int32) (string, error) {
	if retentionDays == 0 {
		retentionDays = DefaultLogRetention
	}
	name := repository.LogGroupName(functionName)
	if err := s.CWLogsRepo.CreateLogGroupIfNotExists(ctx, name, retentionDays); err != nil {
		return "", err
	}
	loggerOrDiscard(s.Log).Info("log group ready", "log_group", name, "retention_days", retentionDays)
	return name, nil
}

// DeleteLogGroup remove o Log Group.
func (s *CWLogsService) DeleteLogGroup(ctx context.Context, name string) error {
	return s.CWLogsRepo.DeleteLogGroup(ctx, name)
}
