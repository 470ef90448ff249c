package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mxppxm/english-tutor/internal/config"
	"github.com/mxppxm/english-tutor/internal/llm"
	"github.com/mxppxm/english-tutor/internal/logger"
	rds "github.com/mxppxm/english-tutor/internal/platform/redis"
	"github.com/mxppxm/english-tutor/internal/recovery"
	"github.com/mxppxm/english-tutor/internal/vocab"
	"github.com/mxppxm/english-tutor/prompts"
)

// Gateway is what the orchestrator needs from the LLM layer.
type Gateway interface {
	Chat(ctx context.Context, provider llm.Provider, apiKey, model string, messages []llm.Message) (string, error)
}

// ErrMissingAPIKey is rejected at the boundary before any model call.
var ErrMissingAPIKey = errors.New("缺少API密钥")

// Legacy whole-text mode truncates overlong input instead of batching it.
const maxLegacyTextLength = 5000

const cacheTTL = time.Hour

// Service runs the analysis pipeline: batching, the compliance retry state
// machine, response recovery, and final assembly.
type Service struct {
	log     *logger.Logger
	cfg     config.Config
	gateway Gateway
	vocab   *vocab.Library
	cache   *rds.Service // nil when redis is not configured
}

func NewService(cfg config.Config, gateway Gateway, library *vocab.Library, cache *rds.Service) *Service {
	return &Service{
		log:     logger.New("Analyze"),
		cfg:     cfg,
		gateway: gateway,
		vocab:   library,
		cache:   cache,
	}
}

// ResolveOptions fills request-level settings from configured defaults and
// rejects requests that end up with no API key.
func (s *Service) ResolveOptions(req Request) (Options, error) {
	provider := llm.Provider(req.Provider)
	if provider == "" {
		provider = llm.Provider(s.cfg.DefaultProvider)
	}
	if provider != llm.ProviderGemini {
		provider = llm.ProviderDoubao
	}

	apiKey := req.APIKey
	model := req.ModelName
	if provider == llm.ProviderGemini {
		if apiKey == "" {
			apiKey = s.cfg.GeminiAPIKey
		}
		if model == "" {
			model = s.cfg.GeminiModel
		}
	} else {
		if apiKey == "" {
			apiKey = s.cfg.DoubaoAPIKey
		}
		if model == "" {
			model = s.cfg.DoubaoModel
		}
	}
	if apiKey == "" {
		return Options{}, ErrMissingAPIKey
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}

	return Options{
		Provider:     provider,
		APIKey:       apiKey,
		ModelName:    model,
		BatchSize:    batchSize,
		VocabularyID: req.VocabularyID,
	}, nil
}

// AnalyzeSentences runs sentence-mode analysis over batches.
func (s *Service) AnalyzeSentences(ctx context.Context, sentences []string, opts Options) (*Response, error) {
	aggregate, err := s.AnalyzeBatched(ctx, sentences, opts)
	if err != nil {
		return nil, err
	}
	originalText := strings.Join(sentences, " ")
	return s.assemble(aggregate, originalText, "sentence", false, opts.VocabularyID), nil
}

// AnalyzeText runs legacy whole-text analysis in a single model call,
// truncating overlong input.
func (s *Service) AnalyzeText(ctx context.Context, text string, opts Options) (*Response, error) {
	processed := text
	truncated := false
	if len(processed) > maxLegacyTextLength {
		processed = processed[:maxLegacyTextLength] + "..."
		truncated = true
		s.log.LogWarnf("text too long (%d chars), truncated for legacy analysis", len(text))
	}

	raw, err := s.callWithComplianceRetry(ctx, opts, processed)
	if err != nil {
		return nil, err
	}
	result := recovery.Recover(raw)
	return s.assemble(&result, text, "paragraph", truncated, opts.VocabularyID), nil
}

// AnalyzeBatched partitions sentences into consecutive chunks of at most
// opts.BatchSize and analyzes them strictly in order. A batch whose reply
// degrades to the recovery stub is still merged; a hard gateway failure
// aborts the remaining batches.
func (s *Service) AnalyzeBatched(ctx context.Context, sentences []string, opts Options) (*recovery.Result, error) {
	if cached := s.cacheLookup(ctx, sentences, opts); cached != nil {
		return cached, nil
	}

	chunks := chunkSentences(sentences, opts.BatchSize)
	s.log.LogInfof("analyzing %d sentences in %d batches (provider=%s)", len(sentences), len(chunks), opts.Provider)

	aggregate := &recovery.Result{}
	degraded := 0
	for i, chunk := range chunks {
		raw, err := s.callWithComplianceRetry(ctx, opts, prompts.SentenceList(chunk))
		if err != nil {
			return nil, err
		}

		result := recovery.Recover(raw)
		if result.Degraded {
			degraded++
			s.log.LogWarnf("batch %d/%d degraded to fallback, merging anyway", i+1, len(chunks))
		}
		mergeBatch(aggregate, &result)
	}

	if degraded > 0 {
		s.log.LogWarnf("%d/%d batches degraded", degraded, len(chunks))
	} else {
		s.cacheStore(ctx, sentences, opts, aggregate)
	}
	return aggregate, nil
}

// callWithComplianceRetry is the two-state {FirstAttempt, StrictRetry}
// machine: when the first reply visibly violates the pure-JSON instruction,
// exactly one retry is issued with a harsher system prompt. The machine is
// terminal after the retry; whatever comes back goes to the recovery engine.
func (s *Service) callWithComplianceRetry(ctx context.Context, opts Options, userContent string) (string, error) {
	first := []llm.Message{
		{Role: "system", Content: prompts.Analysis},
		{Role: "user", Content: userContent},
	}
	raw, err := s.gateway.Chat(ctx, opts.Provider, opts.APIKey, opts.ModelName, first)
	if err != nil {
		return "", err
	}
	if !recovery.LooksNoncompliant(raw) {
		return raw, nil
	}

	s.log.LogWarnf("reply violates pure-JSON instruction, issuing strict retry")
	strict := []llm.Message{
		{Role: "system", Content: prompts.StrictRetry},
		{Role: "user", Content: userContent},
	}
	retry, retryErr := s.gateway.Chat(ctx, opts.Provider, opts.APIKey, opts.ModelName, strict)
	if retryErr != nil || strings.TrimSpace(retry) == "" {
		// Keep the first reply; the recovery cascade gets a shot at it.
		return raw, nil
	}
	return retry, nil
}

// mergeBatch appends a batch result onto the aggregate in order, adopting the
// first non-degraded title, overview and phrase list seen.
func mergeBatch(aggregate, batch *recovery.Result) {
	if !batch.Degraded {
		if aggregate.Title == "" {
			aggregate.Title = batch.Title
		}
		if aggregate.Overview == "" {
			aggregate.Overview = batch.Overview
		}
	}
	if len(aggregate.Phrases) == 0 {
		aggregate.Phrases = batch.Phrases
	}
	aggregate.Sentences = append(aggregate.Sentences, batch.Sentences...)
	aggregate.Paragraphs = append(aggregate.Paragraphs, batch.Paragraphs...)
}

func chunkSentences(sentences []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var chunks [][]string
	for start := 0; start < len(sentences); start += size {
		end := start + size
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, sentences[start:end])
	}
	return chunks
}

// assemble merges the aggregate with the vocabulary match into the response.
func (s *Service) assemble(parsed *recovery.Result, originalText, mode string, processed bool, vocabularyID string) *Response {
	resp := &Response{
		Title:        parsed.Title,
		Overview:     parsed.Overview,
		Phrases:      parsed.Phrases,
		Sentences:    parsed.Sentences,
		Paragraphs:   parsed.Paragraphs,
		OriginalText: originalText,
		AnalysisMode: mode,
		Processed:    processed,
	}
	if resp.Title == "" {
		resp.Title = "英文精讲"
	}
	if resp.Phrases == nil {
		resp.Phrases = []recovery.Phrase{}
	}
	if resp.Sentences == nil {
		resp.Sentences = []recovery.SentenceAnalysis{}
	}
	if resp.Paragraphs == nil {
		resp.Paragraphs = []json.RawMessage{}
	}

	if vocabularyID != "" && s.vocab != nil {
		analysis, err := s.vocab.Analyze(vocabularyID, originalText)
		if err != nil {
			// Vocabulary matching never blocks the analysis itself.
			s.log.LogWarnf("vocabulary analysis failed: %v", err)
		} else {
			resp.Vocabulary = analysis
		}
	}
	return resp
}

func (s *Service) cacheLookup(ctx context.Context, sentences []string, opts Options) *recovery.Result {
	if s.cache == nil {
		return nil
	}
	key := rds.AnalysisCacheKey(string(opts.Provider), opts.ModelName, sentences)
	var cached recovery.Result
	if err := s.cache.CacheGet(ctx, key, &cached); err != nil {
		return nil
	}
	s.log.LogInfof("analysis cache hit (%d sentences)", len(sentences))
	return &cached
}

func (s *Service) cacheStore(ctx context.Context, sentences []string, opts Options, result *recovery.Result) {
	if s.cache == nil {
		return
	}
	key := rds.AnalysisCacheKey(string(opts.Provider), opts.ModelName, sentences)
	if err := s.cache.CacheSet(ctx, key, result, cacheTTL); err != nil {
		s.log.LogWarnf("analysis cache store failed: %v", err)
	}
}
