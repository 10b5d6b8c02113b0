package jlog

import (
	"context"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

func New() *logger {
	return &logger{}
}

type logger struct{}

func (l logger) Debug(ctx context.Context, msg string, meta workflow.MKV) {
	log.Debug(ctx, msg, j.MKS(map[string]string(meta)))
}

func (l logger) Error(ctx context.Context, err error) {
	log.Error(ctx, errors.Wrap(err, ""))
}

var _ workflow.Logger = (*logger)(nil)
