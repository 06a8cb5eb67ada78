//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/vector"
)

// The runtime environment is process-wide and may only be initialized once.
var (
	ortOnce    sync.Once
	ortInitErr error
)

// ONNXGateway runs a pooled sentence-embedding model locally through ONNX Runtime.
// It requires CGO and the onnxruntime shared library. Inference is serialized.
type ONNXGateway struct {
	session    *ort.AdvancedSession
	model      string
	dimensions int
	maxTokens  int
	normalize  bool
	tokenizer  Tokenizer
	// Pre-allocated tensors for Run(); we update input data and read output.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXGateway creates an ONNX gateway, initializing the runtime on first use.
// A nil tokenizer falls back to SimpleTokenizer.
func NewONNXGateway(modelPath string, dimensions, maxTokens int, normalize bool, tokenizer Tokenizer) (*ONNXGateway, error) {
	ortOnce.Do(func() { ortInitErr = ort.InitializeEnvironment() })
	if ortInitErr != nil {
		return nil, errs.Unavailable("onnx runtime", ortInitErr)
	}
	if tokenizer == nil {
		tokenizer = &SimpleTokenizer{}
	}
	inputIDs, attentionMask, tokenTypeIDs := tokenizer.Tokenize("", maxTokens)
	maxTokens = len(inputIDs)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, errs.Unavailable("onnx input_ids tensor", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, errs.Unavailable("onnx attention_mask tensor", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, errs.Unavailable("onnx token_type_ids tensor", err)
	}
	outputData := make([]float32, dimensions)
	outputTensor, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), outputData)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, errs.Unavailable("onnx output tensor", err)
	}

	inputs := []ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.ArbitraryTensor{outputTensor}
	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		inputs,
		outputs,
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, errs.Unavailable("onnx session", fmt.Errorf("%s: %w", modelPath, err))
	}

	return &ONNXGateway{
		session:             session,
		model:               modelPath,
		dimensions:          dimensions,
		maxTokens:           maxTokens,
		normalize:           normalize,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}, nil
}

// Embed runs one inference per text.
func (g *ONNXGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := g.embed(text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (g *ONNXGateway) embed(text string) ([]float32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	inputIDs, attentionMask, tokenTypeIDs := g.tokenizer.Tokenize(text, g.maxTokens)

	copy(g.inputIDsTensor.GetData(), inputIDs)
	copy(g.attentionMaskTensor.GetData(), attentionMask)
	copy(g.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

	if err := g.session.Run(); err != nil {
		return nil, errs.Internal("onnx inference", err)
	}

	embedding := make([]float32, g.dimensions)
	copy(embedding, g.outputTensor.GetData()[:g.dimensions])
	if g.normalize {
		vector.Normalize(embedding)
	}
	return embedding, nil
}

// Dimensions returns the embedding dimension.
func (g *ONNXGateway) Dimensions() int {
	return g.dimensions
}

// Model returns the model path.
func (g *ONNXGateway) Model() string {
	return g.model
}

// MaxSeqLength returns the token frame length of the input tensors.
func (g *ONNXGateway) MaxSeqLength() int {
	return g.maxTokens
}

// Close destroys the session and tensors.
func (g *ONNXGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var err error
	if g.session != nil {
		err = g.session.Destroy()
		g.session = nil
	}
	if g.inputIDsTensor != nil {
		_ = g.inputIDsTensor.Destroy()
		g.inputIDsTensor = nil
	}
	if g.attentionMaskTensor != nil {
		_ = g.attentionMaskTensor.Destroy()
		g.attentionMaskTensor = nil
	}
	if g.tokenTypeIDsTensor != nil {
		_ = g.tokenTypeIDsTensor.Destroy()
		g.tokenTypeIDsTensor = nil
	}
	if g.outputTensor != nil {
		_ = g.outputTensor.Destroy()
		g.outputTensor = nil
	}
	return err
}
