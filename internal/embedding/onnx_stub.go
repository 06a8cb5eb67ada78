//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"

	"github.com/hyperjump/kensaku/internal/errs"
)

// ONNXGateway stub type when built without CGO (see onnx.go for real implementation).
type ONNXGateway struct{}

var errNoCGO = errs.Unavailable("onnx gateway",
	errors.New("requires CGO; build with CGO_ENABLED=1 and onnxruntime"))

// NewONNXGateway returns DependencyUnavailable when built without CGO.
func NewONNXGateway(_ string, _, _ int, _ bool, _ Tokenizer) (*ONNXGateway, error) {
	return nil, errNoCGO
}

func (g *ONNXGateway) Embed(context.Context, []string) ([][]float32, error) { return nil, errNoCGO }
func (g *ONNXGateway) Dimensions() int                                      { return 0 }
func (g *ONNXGateway) Model() string                                        { return "" }
func (g *ONNXGateway) MaxSeqLength() int                                    { return 0 }
func (g *ONNXGateway) Close() error                                         { return nil }
