package logic

import (
	"context"
	"encoding/json"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/svc"
	"ekata-api/internal/types"
	"ekata-api/pkg/generate"
)

type GenerateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGenerateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GenerateLogic {
	return &GenerateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Generate forwards one prompt to the model and returns its JSON answer.
func (l *GenerateLogic) Generate(req *types.GenerateRequest) (json.RawMessage, error) {
	payload, err := l.svcCtx.Generator.Generate(l.ctx, generate.Request{
		Prompt:          req.Prompt,
		Schema:          req.Schema,
		UseGoogleSearch: req.UseGoogleSearch,
	})
	if err != nil {
		l.Errorf("generate (grounded=%t): %v", req.UseGoogleSearch, err)
		return nil, err
	}
	return payload, nil
}
