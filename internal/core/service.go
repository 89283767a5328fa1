package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
	"github.com/Eklavya-kapoor/armor-api/internal/trust"
)

// ScanService is the single entry point for message risk scoring. It
// sequences feature extraction, classification and scoring, and stamps the
// result with wall-clock timing. All per-request state is discarded after
// the assessment is returned.
type ScanService struct {
	extractor     *FeatureExtractor
	classifier    TextClassifier
	scorer        *RiskScorer
	textProcessor *textutil.TextProcessor
	trusted       *trust.Checker
	store         AssessmentStore
	logger        *zap.Logger
	storeEnabled  bool
	storeTTL      time.Duration
	maxTextLength int
}

// NewScanService creates a new scan service
func NewScanService(
	extractor *FeatureExtractor,
	classifier TextClassifier,
	scorer *RiskScorer,
	textProcessor *textutil.TextProcessor,
	trusted *trust.Checker,
	store AssessmentStore,
	logger *zap.Logger,
	storeEnabled bool,
	storeTTL time.Duration,
	maxTextLength int,
) *ScanService {
	return &ScanService{
		extractor:     extractor,
		classifier:    classifier,
		scorer:        scorer,
		textProcessor: textProcessor,
		trusted:       trusted,
		store:         store,
		logger:        logger,
		storeEnabled:  storeEnabled,
		storeTTL:      storeTTL,
		maxTextLength: maxTextLength,
	}
}

// Scan assesses a message. The only caller-visible failure is ErrEmptyText;
// classifier unavailability and timeouts degrade to a fallback verdict
// inside the classifier chain, so a well-formed request always yields a
// structurally valid assessment.
func (s *ScanService) Scan(ctx context.Context, req *ScanRequest) (*RiskAssessment, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	text := s.textProcessor.Process(req.Text, s.maxTextLength)

	if s.trusted != nil && s.trusted.IsTrusted(req.Sender) {
		s.logger.Info("Skipping scan for trusted sender domain",
			zap.String("sender", req.Sender),
			zap.String("action", "trust_bypass"))
		return s.finish(&RiskAssessment{
			RiskScore:   0,
			RiskLevel:   RiskLevelLow,
			Explanation: []string{"Sender domain is trusted"},
			Features:    FeatureSet{},
			ModelUsed:   "trusted-domain",
			AnalyzedAt:  time.Now(),
		}, start), nil
	}

	contentHash := hashContent(text, req.Sender)
	if s.storeEnabled && s.store != nil {
		if entry, err := s.store.Get(ctx, contentHash); err == nil {
			s.logger.Debug("Assessment store hit", zap.String("content_hash", contentHash))
			return s.finish(&RiskAssessment{
				RiskScore:   entry.RiskScore,
				RiskLevel:   entry.RiskLevel,
				Explanation: []string{"Previously assessed message"},
				Features:    FeatureSet{},
				Degraded:    entry.Degraded,
				ModelUsed:   "store",
				AnalyzedAt:  time.Now(),
			}, start), nil
		}
	}

	// Extraction and classification are independent of each other, so they
	// run concurrently.
	var (
		features   FeatureSet
		classified *ClassifierResult
		wg         sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		classified, _ = s.classifier.Classify(ctx, text)
	}()
	features = s.extractor.Extract(text, req.Sender, req.Metadata)
	wg.Wait()

	if classified == nil {
		classified = &ClassifierResult{
			Label:      LabelBenign,
			Confidence: 0.5,
			ModelUsed:  "none",
			Degraded:   true,
		}
	}

	assessment := s.scorer.Score(features, classified)

	if s.storeEnabled && s.store != nil {
		entry := &StoredAssessment{
			ContentHash: contentHash,
			RiskScore:   assessment.RiskScore,
			RiskLevel:   assessment.RiskLevel,
			Degraded:    assessment.Degraded,
			LastSeen:    time.Now(),
			ExpiresAt:   time.Now().Add(s.storeTTL),
		}
		if err := s.store.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update assessment store", zap.Error(err))
		}
	}

	s.finish(assessment, start)
	s.logger.Info("Message scanned",
		zap.Float64("risk_score", assessment.RiskScore),
		zap.String("risk_level", string(assessment.RiskLevel)),
		zap.Bool("degraded", assessment.Degraded),
		zap.Int64("processing_time_ms", assessment.ProcessingTimeMs))

	return assessment, nil
}

// finish stamps processing time on an assessment.
func (s *ScanService) finish(assessment *RiskAssessment, start time.Time) *RiskAssessment {
	assessment.ProcessingTimeMs = time.Since(start).Milliseconds()
	return assessment
}

// hashContent derives the store key for a scanned message.
func hashContent(text, sender string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(sender))
	return hex.EncodeToString(h.Sum(nil))
}
