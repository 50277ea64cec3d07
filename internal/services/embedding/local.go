package embedding

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/wordlens/wordlens/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// LocalProvider looks up vectors in a word2vec-style text table loaded from
// disk: one line per word, whitespace-separated, word first then components.
// It requires an explicit LoadModel call before use. Out-of-vocabulary words
// yield an all-zero vector rather than an error, so downstream similarity
// scoring naturally ranks unknown words as dissimilar to everything.
type LocalProvider struct {
	dimension int

	mu     sync.RWMutex
	vocab  map[string][]float32
	loaded bool
	path   string
}

func NewLocalProvider(dimension int) *LocalProvider {
	return &LocalProvider{dimension: dimension}
}

// Model identifies the local table; the loaded file name partitions storage.
func (p *LocalProvider) Model() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelLocked()
}

func (p *LocalProvider) modelLocked() string {
	if p.path == "" {
		return "local"
	}
	return "local:" + p.path
}

// LoadModel reads the vector table from path, replacing any previous table.
// Lines whose component count differs from the configured dimension are
// skipped with a warning; if no dimension was configured, the first valid
// line fixes it.
func (p *LocalProvider) LoadModel(path string) error {
	f, err := os.Open(path) // #nosec G304 - operator-supplied model path
	if err != nil {
		return fmt.Errorf("failed to open embedding model %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	vocab := make(map[string][]float32)
	dimension := p.dimension
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		word := strings.ToLower(fields[0])
		components := fields[1:]

		// word2vec text dumps open with a "vocabSize dimension" header row.
		if len(vocab) == 0 && len(components) == 1 {
			continue
		}

		if dimension == 0 {
			dimension = len(components)
		}
		if len(components) != dimension {
			skipped++
			continue
		}

		vector := make([]float32, dimension)
		ok := true
		for i, c := range components {
			v, err := strconv.ParseFloat(c, 32)
			if err != nil {
				ok = false
				break
			}
			vector[i] = float32(v)
		}
		if !ok {
			skipped++
			continue
		}
		vocab[word] = vector
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read embedding model %s: %w", path, err)
	}
	if len(vocab) == 0 {
		return fmt.Errorf("embedding model %s contains no usable vectors", path)
	}

	p.mu.Lock()
	p.vocab = vocab
	p.dimension = dimension
	p.loaded = true
	p.path = path
	p.mu.Unlock()

	if skipped > 0 {
		fiberlog.Warnf("embedding: skipped %d malformed rows while loading %s", skipped, path)
	}
	fiberlog.Infof("embedding: loaded %d vectors (dimension %d) from %s", len(vocab), dimension, path)
	return nil
}

// GenerateEmbedding looks up the first whitespace-delimited token of text.
// Before LoadModel it fails with a model-not-loaded error; after, unknown
// tokens soft-fail to a zero vector of the configured dimension.
func (p *LocalProvider) GenerateEmbedding(ctx context.Context, text string) (*models.EmbeddingResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.loaded {
		return nil, models.NewModelNotLoadedError("local")
	}

	token := ""
	if fields := strings.Fields(strings.ToLower(text)); len(fields) > 0 {
		token = fields[0]
	}

	vector, ok := p.vocab[token]
	if !ok {
		fiberlog.Debugf("embedding: %q not in local vocabulary, returning zero vector", token)
		return &models.EmbeddingResult{
			Vector:    make([]float32, p.dimension),
			Dimension: p.dimension,
			Model:     p.modelLocked(),
		}, nil
	}

	// Copy so callers cannot mutate the table.
	out := make([]float32, len(vector))
	copy(out, vector)

	return &models.EmbeddingResult{
		Vector:    out,
		Dimension: len(out),
		Model:     p.modelLocked(),
	}, nil
}

// IsAvailable reports loaded state, not configuration intent.
func (p *LocalProvider) IsAvailable(ctx context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}
