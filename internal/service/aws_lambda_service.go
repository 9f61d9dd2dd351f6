package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/packaging"
	"github.com/raywall/wanwu/internal/repository"
	"github.com/raywall/wanwu/pkg/types"
)

// FunctionService manipula a lógica de negócio para funções Lambda, mantendo
// código e timeout alinhados à configuração local.
type FunctionService struct {
	LambdaRepo   *repository.LambdaRepository
	ArtifactRepo *repository.ArtifactRepository
	Log          logging.LogManager
}

// EnsureFunction cria a função ou atualiza uma existente cujo timeout ou código
// difere. O código só é enviado quando o digest mudou. Devolve a função como
// ficou após a execução.
func (s *FunctionService) EnsureFunction(ctx context.Context, lc types.LambdaConfig, roleARN string) (*lambda.GetFunctionOutput, error) {
	log := loggerOrDiscard(s.Log).With("function", lc.FunctionName)

	entry := packaging.EntryName(lc.FunctionName, lc.SourceFile, lc.ArchiveName)
	pkg, err := packaging.Build(lc.SourceFile, entry)
	if err != nil {
		return nil, fmt.Errorf("packaging %s: %w", lc.SourceFile, err)
	}
	defer pkg.Remove()
	log.Debug("package built", "entry", entry, "sha256", pkg.CodeSha256, "bytes", len(pkg.Bytes))

	existing, err := s.LambdaRepo.GetFunction(ctx, lc.FunctionName)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		code, err := s.codeSource(ctx, lc, pkg)
		if err != nil {
			return nil, err
		}
		_, err = s.LambdaRepo.CreateFunction(ctx, repository.FunctionSpec{
			Name:        lc.FunctionName,
			RoleARN:     roleARN,
			Runtime:     lc.Runtime,
			Handler:     lc.Handler,
			Timeout:     lc.Timeout,
			MemorySize:  lc.MemorySize,
			Environment: lc.Environment,
			Code:        code,
		})
		if err != nil {
			return nil, err
		}
		if err := s.LambdaRepo.WaitForUpdate(ctx, lc.FunctionName); err != nil {
			return nil, err
		}
		log.Info("function created")
		return s.refresh(ctx, lc.FunctionName)
	}

	cfg := existing.Configuration
	if current := aws.ToInt32(cfg.Timeout); current != lc.Timeout {
		if err := s.LambdaRepo.UpdateTimeout(ctx, lc.FunctionName, lc.Timeout); err != nil {
			return nil, err
		}
		log.Info("timeout updated", "from", current, "to", lc.Timeout)
	}

	if aws.ToString(cfg.CodeSha256) == pkg.CodeSha256 {
		log.Info("code unchanged", "sha256", pkg.CodeSha256)
		return s.refresh(ctx, lc.FunctionName)
	}

	code, err := s.codeSource(ctx, lc, pkg)
	if err != nil {
		return nil, err
	}
	if _, err := s.LambdaRepo.UpdateCode(ctx, lc.FunctionName, code); err != nil {
		return nil, err
	}
	log.Info("code updated", "from", aws.ToString(cfg.CodeSha256), "to", pkg.CodeSha256)
	return s.refresh(ctx, lc.FunctionName)
}

// codeSource envia o pacote ao S3 quando há bucket de artefatos configurado.
func (s *FunctionService) codeSource(ctx context.Context, lc types.LambdaConfig, pkg *packaging.Package) (repository.CodeSource, error) {
	if lc.ArtifactBucket == "" {
		return repository.CodeSource{ZipFile: pkg.Bytes}, nil
	}
	key := repository.ArtifactKey(lc.FunctionName, pkg.HexSha256)
	if err := s.ArtifactRepo.Upload(ctx, lc.ArtifactBucket, key, pkg.Bytes); err != nil {
		return repository.CodeSource{}, err
	}
	loggerOrDiscard(s.Log).Debug("package uploaded", "bucket", lc.ArtifactBucket, "key", key)
	return repository.CodeSource{S3Bucket: lc.ArtifactBucket, S3Key: key}, nil
}

func (s *FunctionService) refresh(ctx context.Context, name string) (*lambda.GetFunctionOutput, error) {
	out, err := s.LambdaRepo.GetFunction(ctx, name)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("function %s disappeared after provisioning", name)
	}
	return out, nil
}

// DeleteFunction remove a função.
func (s *FunctionService) DeleteFunction(ctx context.Context, name string) error {
	if err := s.LambdaRepo.DeleteFunction(ctx, name); err != nil {
		return err
	}
	loggerOrDiscard(s.Log).Info("function deleted", "function", name)
	return nil
}
