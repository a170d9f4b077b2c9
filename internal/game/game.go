// Package game builds quiz rounds and checks guesses on top of the catalog
// cache and the image deriver.
package game

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pokeguess/pokeguess/internal/catalog"
	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/observability/metrics"
)

const (
	// OptionCount is the number of names offered per round.
	OptionCount = 4

	// DefaultMaxDistractorDraws bounds random draws spent collecting distractors.
	DefaultMaxDistractorDraws = 200
)

// Event kinds passed to the EventPublisher.
const (
	EventRound = "round"
	EventGuess = "guess"
)

// Round is a single quiz question.
type Round struct {
	ID              int      `json:"id"`
	SilhouetteImage string   `json:"silhouetteImage"`
	Options         []string `json:"options"`
}

// GuessRequest is a player's answer. Pointer fields distinguish absent
// values from zero values.
type GuessRequest struct {
	ID          *int    `json:"id"`
	GuessedName *string `json:"guessedName"`
}

// GuessResult reveals the answer to a round.
type GuessResult struct {
	CorrectName  string `json:"correctName"`
	FullImageURL string `json:"fullImageUrl"`
	GuessCorrect bool   `json:"guessCorrect"`
}

// RoundEvent is published after a round has been generated.
type RoundEvent struct {
	PokemonID int       `json:"pokemonId"`
	Options   []string  `json:"options"`
	Timestamp time.Time `json:"timestamp"`
}

// GuessEvent is published after a guess has been checked.
type GuessEvent struct {
	PokemonID   int       `json:"pokemonId"`
	GuessedName string    `json:"guessedName"`
	Correct     bool      `json:"correct"`
	Timestamp   time.Time `json:"timestamp"`
}

// Catalog resolves pokemon ids. Implemented by *catalog.Cache.
type Catalog interface {
	Range() (minID, maxID int)
	CheckID(id *int) error
	ResolveID(ctx context.Context, id int) (catalog.Record, error)
}

// Images derives the assets shown to players. Implemented by *imageprovider.Deriver.
type Images interface {
	EnsureRealImage(ctx context.Context, id int, artworkURL string) (string, error)
	EnsureSilhouette(ctx context.Context, id int, artworkURL string) (string, error)
}

// EventPublisher receives game events. Publishing is best effort.
type EventPublisher interface {
	PublishEvent(ctx context.Context, kind string, payload any) error
}

// Config holds round generation settings.
type Config struct {
	DistinctOptions    bool
	MaxDistractorDraws int
	Rand               *rand.Rand // nil seeds a new generator
}

// Service implements round generation and guess checking.
type Service struct {
	catalog   Catalog
	images    Images
	publisher EventPublisher
	metrics   *metrics.GameMetrics
	log       logger.Logger

	distinct bool
	maxDraws int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a game service. publisher and metrics may be nil.
func NewService(cfg Config, c Catalog, images Images, publisher EventPublisher, m *metrics.GameMetrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.Global().Module("game")
	}
	if cfg.MaxDistractorDraws <= 0 {
		cfg.MaxDistractorDraws = DefaultMaxDistractorDraws
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // game randomness
	}

	return &Service{
		catalog:   c,
		images:    images,
		publisher: publisher,
		metrics:   m,
		log:       log,
		distinct:  cfg.DistinctOptions,
		maxDraws:  cfg.MaxDistractorDraws,
		rng:       rng,
	}
}

// intN returns a uniform int in [0, n). *rand.Rand is not safe for concurrent use.
func (s *Service) intN(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n)
}

func (s *Service) randomID() int {
	minID, maxID := s.catalog.Range()
	return minID + s.intN(maxID-minID+1)
}

// GenerateRound picks a random target, collects three distractor names and
// derives the target's silhouette.
func (s *Service) GenerateRound(ctx context.Context) (Round, error) {
	target, err := s.catalog.ResolveID(ctx, s.randomID())
	if err != nil {
		s.metrics.RecordRound(0, err)
		return Round{}, err
	}

	names, draws, err := s.distractors(ctx, target)
	if err != nil {
		s.metrics.RecordRound(draws, err)
		return Round{}, err
	}

	options := slices.Insert(names, s.intN(OptionCount), target.Name)

	silhouette, err := s.images.EnsureSilhouette(ctx, target.ID, target.ArtworkURL)
	if err != nil {
		s.metrics.RecordRound(draws, err)
		return Round{}, err
	}

	s.metrics.RecordRound(draws, nil)
	s.log.Debug("Round generated",
		logger.Int("pokemon_id", target.ID),
		logger.Int("draws", draws))

	s.publish(ctx, EventRound, RoundEvent{
		PokemonID: target.ID,
		Options:   options,
		Timestamp: time.Now(),
	})

	return Round{
		ID:              target.ID,
		SilhouetteImage: silhouette,
		Options:         options,
	}, nil
}

// distractors draws random ids other than the target until three names are
// collected. Lookup failures are skipped. It returns the number of draws used.
func (s *Service) distractors(ctx context.Context, target catalog.Record) ([]string, int, error) {
	names := make([]string, 0, OptionCount)
	draws := 0

	for len(names) < OptionCount-1 {
		if draws >= s.maxDraws {
			return nil, draws, errors.New(ErrNotEnoughOptions).
				Component("game").
				Category(errors.CategoryNotFound).
				Context("pokemon_id", target.ID).
				Context("collected", len(names)).
				Context("draws", draws).
				Build()
		}
		if err := ctx.Err(); err != nil {
			return nil, draws, err
		}
		draws++

		id := s.randomID()
		if id == target.ID {
			continue
		}

		record, err := s.catalog.ResolveID(ctx, id)
		if err != nil {
			s.log.Debug("Skipping distractor",
				logger.Int("pokemon_id", id),
				logger.Error(err))
			continue
		}

		if s.distinct && (sameName(record.Name, target.Name) || slices.ContainsFunc(names, func(n string) bool {
			return sameName(n, record.Name)
		})) {
			continue
		}

		names = append(names, record.Name)
	}

	return names, draws, nil
}

// CheckGuess validates the request, reveals the correct name and full image
// and reports whether the guess matches ignoring case.
func (s *Service) CheckGuess(ctx context.Context, req GuessRequest) (GuessResult, error) {
	result, err := s.checkGuess(ctx, req)
	if err != nil {
		s.metrics.RecordGuess("error")
		return GuessResult{}, err
	}

	outcome := "wrong"
	if result.GuessCorrect {
		outcome = "correct"
	}
	s.metrics.RecordGuess(outcome)

	s.publish(ctx, EventGuess, GuessEvent{
		PokemonID:   *req.ID,
		GuessedName: *req.GuessedName,
		Correct:     result.GuessCorrect,
		Timestamp:   time.Now(),
	})

	return result, nil
}

func (s *Service) checkGuess(ctx context.Context, req GuessRequest) (GuessResult, error) {
	if req.ID == nil {
		return GuessResult{}, missingField("id")
	}
	if req.GuessedName == nil {
		return GuessResult{}, missingField("guessedName")
	}
	if err := s.catalog.CheckID(req.ID); err != nil {
		return GuessResult{}, err
	}

	record, err := s.catalog.ResolveID(ctx, *req.ID)
	if err != nil {
		return GuessResult{}, err
	}

	fullImage, err := s.images.EnsureRealImage(ctx, record.ID, record.ArtworkURL)
	if err != nil {
		return GuessResult{}, err
	}

	return GuessResult{
		CorrectName:  record.Name,
		FullImageURL: fullImage,
		GuessCorrect: sameName(*req.GuessedName, record.Name),
	}, nil
}

// sameName compares names under Unicode lower-casing. Whitespace is significant.
func sameName(a, b string) bool {
	// A Caser holds state and must not be shared between goroutines
	return cases.Lower(language.Und).String(a) == cases.Lower(language.Und).String(b)
}

func (s *Service) publish(ctx context.Context, kind string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, kind, payload); err != nil {
		s.log.Warn("Failed to publish game event",
			logger.String("kind", kind),
			logger.Error(err))
	}
}
