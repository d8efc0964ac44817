package analysis

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/google/uuid"
)

// SynthModel is the model name stamped on synthesized records.
const SynthModel = "LensLine-v2"

var (
	faceFlags     = []string{"Eye reflection mismatch", "Facial boundary artifacts"}
	metadataFlags = []string{"EXIF data stripped", "Inconsistent compression"}
	aiPatterns    = []string{"GAN fingerprint detected"}
)

// Synthesizer fabricates placeholder records when the remote service is
// unreachable. Its output is random demo data, not a detection result, and
// every record it produces is marked Synthetic.
type Synthesizer struct {
	rng *rand.Rand
	now func() time.Time
	mu  sync.Mutex
}

// NewSynthesizer returns a synthesizer seeded from src, or from a random
// PCG seed when src is nil.
func NewSynthesizer(src rand.Source) *Synthesizer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Synthesizer{rng: rand.New(src), now: time.Now}
}

// Synthesize builds a placeholder record for imageURL.
func (s *Synthesizer) Synthesize(imageURL string) model.AnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	verdict := model.Verdicts[s.rng.IntN(len(model.Verdicts))]
	now := s.now()

	record := model.AnalysisRecord{
		// The uuid suffix keeps ids unique when several analyses finish in
		// the same millisecond.
		ID:         fmt.Sprintf("analysis-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		ImageURL:   imageURL,
		Verdict:    verdict,
		Confidence: s.rng.IntN(30) + 70,
		Timestamp:  now.UTC(),
		Details: model.Details{
			FaceAnalysis: model.FaceAnalysis{
				Score:           s.rng.IntN(100),
				Inconsistencies: []string{},
			},
			MetadataAnalysis: model.MetadataAnalysis{
				Score: s.rng.IntN(100),
				Flags: []string{},
			},
			AIDetection: model.AIDetection{
				Score:    s.rng.IntN(100),
				Model:    SynthModel,
				Patterns: []string{},
			},
		},
		ProcessingTime: s.rng.IntN(2000) + 500,
		Synthetic:      true,
	}

	if verdict != model.VerdictAuthentic {
		record.Details.FaceAnalysis.Inconsistencies = append(record.Details.FaceAnalysis.Inconsistencies, faceFlags...)
		record.Details.AIDetection.Patterns = append(record.Details.AIDetection.Patterns, aiPatterns...)
	}
	if verdict == model.VerdictFake {
		record.Details.MetadataAnalysis.Flags = append(record.Details.MetadataAnalysis.Flags, metadataFlags...)
	}

	return record
}
