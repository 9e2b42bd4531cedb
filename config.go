package sage

import (
	"os"
	"time"

	"github.com/hyperengineering/sage/internal/store"
)

// Config configures the Sage client.
type Config struct {
	// LocalPath is the path to the local SQLite database.
	// If empty, LocalPath is derived from Store.
	LocalPath string

	// Store is the store ID to operate against.
	// If empty, resolved using store resolution (explicit > SAGE_STORE env > "default").
	Store string

	// SourceID identifies this client instance in recorded data.
	// Defaults to hostname if not set.
	SourceID string

	// Engine holds the tunable thresholds for the five engine components.
	// Zero value means DefaultEngineConfig().
	Engine *EngineConfig

	// Debug enables verbose logging of engine and store operations.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string
}

// DefaultConfig returns a Config with sensible defaults.
// Store defaults to "default", and LocalPath is derived from Store.
func DefaultConfig() Config {
	hostname, _ := os.Hostname()
	return Config{
		Store:     "default",
		LocalPath: store.StoreDBPath("default"),
		SourceID:  hostname,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	SAGE_DB_PATH    → LocalPath
//	SAGE_STORE      → Store
//	SAGE_SOURCE_ID  → SourceID
//	SAGE_DEBUG      → Debug (any non-empty value enables)
//	SAGE_DEBUG_LOG  → DebugLogPath
func ConfigFromEnv() Config {
	return Config{
		LocalPath:    os.Getenv("SAGE_DB_PATH"),
		Store:        os.Getenv("SAGE_STORE"),
		SourceID:     os.Getenv("SAGE_SOURCE_ID"),
		Debug:        os.Getenv("SAGE_DEBUG") != "",
		DebugLogPath: os.Getenv("SAGE_DEBUG_LOG"),
	}
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "required: path to SQLite database"}
	}

	if c.Store != "" {
		if err := store.ValidateStoreID(c.Store); err != nil {
			return &ValidationError{Field: "Store", Message: err.Error()}
		}
	}

	if c.Engine != nil {
		if err := c.Engine.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// WithDefaults fills in default values for unset fields.
// Store resolution: explicit Store field > SAGE_STORE env > "default".
// LocalPath is derived from the resolved store if not explicitly set.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.Store == "" {
		resolved, err := store.ResolveStore("")
		if err == nil {
			c.Store = resolved
		} else {
			c.Store = "default"
		}
	}

	// Auto-migrate an existing legacy database to the default store on first
	// run. Best-effort; errors are silently ignored since migration is optional.
	if c.Store == "default" {
		envPath := os.Getenv("SAGE_DB_PATH")
		storeRoot := store.DefaultStoreRoot()
		_ = migrateAndSetMetadata(envPath, storeRoot)
	}

	if c.LocalPath == "" {
		c.LocalPath = store.StoreDBPath(c.Store)
	}
	if c.SourceID == "" {
		c.SourceID = defaults.SourceID
	}
	if c.Engine == nil {
		engine := DefaultEngineConfig()
		c.Engine = &engine
	}

	return c
}

// migrateAndSetMetadata performs auto-migration of a legacy database and
// records the source path in the new store's metadata.
func migrateAndSetMetadata(envPath, storeRoot string) error {
	result, err := store.MigrateExistingDatabase(envPath, storeRoot)
	if err != nil {
		return err
	}

	if !result.Migrated {
		return nil
	}

	newStore, err := NewStore(result.DestPath)
	if err != nil {
		return err
	}
	defer func() { _ = newStore.Close() }()

	return newStore.SetStoreMigratedFrom(result.SourcePath)
}

// EngineConfig holds the tunable thresholds and window sizes used by the
// engine components. All values are explicit so tests can pin behavior
// deterministically instead of relying on embedded constants.
type EngineConfig struct {
	// MultimodalMargin is the maximum gap (in score points) between the top
	// two style scores for a learner to be considered multimodal.
	MultimodalMargin float64

	// StyleConfidenceHalfLife is the observation count at which style
	// confidence reaches 0.5. Confidence approaches 1 as counts grow.
	StyleConfidenceHalfLife float64

	// SecondStepInterval is the interval in days assigned on the second
	// consecutive successful review.
	SecondStepInterval int

	// MinutesPerCard is the default per-card time estimate used when fitting
	// a study schedule into a time budget.
	MinutesPerCard float64

	// MasteryThreshold is the correct/total ratio above which a session
	// counts as mastered for calibration purposes.
	MasteryThreshold float64

	// CalibrationHalfLife is the session count at which calibration
	// confidence reaches 0.5.
	CalibrationHalfLife float64

	// AdaptationWindow is the number of recent sessions examined by
	// real-time difficulty adaptation.
	AdaptationWindow int

	// TargetAccuracyLow and TargetAccuracyHigh bound the accuracy band in
	// which difficulty is left unchanged.
	TargetAccuracyLow  float64
	TargetAccuracyHigh float64

	// BaselineItemsPerMinute is the pace at which the speed metric scores 50.
	BaselineItemsPerMinute float64

	// AnomalyStdDevs is the deviation (in standard deviations) beyond which
	// a session is flagged anomalous.
	AnomalyStdDevs float64

	// TrendSlope is the minimum per-session accuracy slope magnitude for a
	// trend to count as improving or declining rather than a plateau.
	TrendSlope float64

	// DifficultyBand is the half-width of the calibrated-difficulty band
	// used to narrow the recommendation scoring set.
	DifficultyBand float64

	// ScheduleHorizon caps how far in the future a review may be
	// scheduled. Zero disables the cap.
	ScheduleHorizon time.Duration
}

// DefaultEngineConfig returns the tuned engine thresholds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MultimodalMargin:        15.0,
		StyleConfidenceHalfLife: 3.0,
		SecondStepInterval:      6,
		MinutesPerCard:          2.0,
		MasteryThreshold:        0.8,
		CalibrationHalfLife:     5.0,
		AdaptationWindow:        10,
		TargetAccuracyLow:       0.60,
		TargetAccuracyHigh:      0.85,
		BaselineItemsPerMinute:  1.0,
		AnomalyStdDevs:          2.0,
		TrendSlope:              0.005,
		DifficultyBand:          2.0,
		ScheduleHorizon:         90 * 24 * time.Hour,
	}
}

// Validate checks the engine thresholds for contract violations.
// Returns *ValidationError for invalid fields.
func (c *EngineConfig) Validate() error {
	if c.MultimodalMargin < 0 {
		return &ValidationError{Field: "MultimodalMargin", Message: "must be non-negative"}
	}
	if c.StyleConfidenceHalfLife <= 0 {
		return &ValidationError{Field: "StyleConfidenceHalfLife", Message: "must be positive"}
	}
	if c.SecondStepInterval < IntervalMin {
		return &ValidationError{Field: "SecondStepInterval", Message: "must be at least one day"}
	}
	if c.MinutesPerCard <= 0 {
		return &ValidationError{Field: "MinutesPerCard", Message: "must be positive"}
	}
	if c.MasteryThreshold <= 0 || c.MasteryThreshold > 1 {
		return &ValidationError{Field: "MasteryThreshold", Message: "must be in (0, 1]"}
	}
	if c.AdaptationWindow <= 0 {
		return &ValidationError{Field: "AdaptationWindow", Message: "must be positive"}
	}
	if c.TargetAccuracyLow < 0 || c.TargetAccuracyHigh > 1 || c.TargetAccuracyLow >= c.TargetAccuracyHigh {
		return &ValidationError{Field: "TargetAccuracy", Message: "band must satisfy 0 <= low < high <= 1"}
	}
	if c.AnomalyStdDevs <= 0 {
		return &ValidationError{Field: "AnomalyStdDevs", Message: "must be positive"}
	}
	if c.ScheduleHorizon < 0 {
		return &ValidationError{Field: "ScheduleHorizon", Message: "cannot be negative"}
	}
	return nil
}
