package sage

// CalibrationFactor names one signal that contributed to a calibration.
type CalibrationFactor struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`      // observed signal
	Adjustment float64 `json:"adjustment"` // difficulty points contributed
}

// CalibrationResult is the outcome of calibrating content difficulty for a
// learner.
type CalibrationResult struct {
	CalibratedDifficulty float64             `json:"calibrated_difficulty"` // 1-10
	ConfidenceLevel      float64             `json:"confidence_level"`      // 0-1
	Factors              []CalibrationFactor `json:"factors"`
	SessionsUsed         int                 `json:"sessions_used"`
	SessionsSkipped      int                 `json:"sessions_skipped"`
}

// Calibration signal weights, in difficulty points at full signal strength.
const (
	calibrationSuccessWeight    = 2.0
	calibrationDurationWeight   = 1.0
	calibrationAdaptationWeight = 0.5
)

// CalibrateDifficulty estimates how hard a piece of content really is for a
// learner, starting from its authored difficulty. Three signals adjust it:
// the learner's mastery rate on the content (high mastery pulls difficulty
// down), the deviation of actual session duration from the authored estimate
// (slower than estimated pushes it up), and the learner's adaptation level
// (well-adapted learners experience content as easier).
//
// Confidence grows with the number of usable sessions. With no sessions the
// authored difficulty is returned unchanged at confidence 0. Sessions with
// negative duration are skipped rather than aborting the batch; the skip
// count is reported so callers can detect degraded input.
func CalibrateDifficulty(cfg EngineConfig, content AdaptiveContent, sessions []LearningSession, profile LearningProfile) CalibrationResult {
	result := CalibrationResult{
		CalibratedDifficulty: clamp(content.Difficulty, DifficultyMin, DifficultyMax),
		Factors:              []CalibrationFactor{},
	}

	var (
		mastered    int
		durationSum float64
		scored      int
	)
	for _, s := range sessions {
		if s.Duration < 0 {
			result.SessionsSkipped++
			continue
		}
		result.SessionsUsed++
		durationSum += s.Duration
		if s.TotalQuestions > 0 {
			scored++
			if s.Accuracy() >= cfg.MasteryThreshold {
				mastered++
			}
		}
	}

	if result.SessionsUsed == 0 {
		return result
	}

	adjusted := result.CalibratedDifficulty

	// Mastery rate: 100% mastery shifts difficulty down by the full weight,
	// 0% shifts it up by the same amount.
	if scored > 0 {
		masteryRate := float64(mastered) / float64(scored)
		adjustment := -(masteryRate - 0.5) * 2 * calibrationSuccessWeight
		adjusted += adjustment
		result.Factors = append(result.Factors, CalibrationFactor{
			Name:       "mastery_rate",
			Value:      masteryRate,
			Adjustment: adjustment,
		})
	}

	// Duration deviation: sessions running past the authored estimate mean
	// the content plays harder than written.
	if content.Metadata.EstimatedDuration > 0 {
		meanDuration := durationSum / float64(result.SessionsUsed)
		deviation := clamp(meanDuration/content.Metadata.EstimatedDuration-1, -1, 1)
		adjustment := deviation * calibrationDurationWeight
		adjusted += adjustment
		result.Factors = append(result.Factors, CalibrationFactor{
			Name:       "duration_deviation",
			Value:      deviation,
			Adjustment: adjustment,
		})
	}

	// Adaptation level: learners above the midpoint experience content as
	// easier than authored.
	adaptation := clamp(profile.AdaptationLevel, 0, 100)
	adjustment := -(adaptation - 50) / 50 * calibrationAdaptationWeight
	adjusted += adjustment
	result.Factors = append(result.Factors, CalibrationFactor{
		Name:       "adaptation_level",
		Value:      adaptation,
		Adjustment: adjustment,
	})

	result.CalibratedDifficulty = clamp(adjusted, DifficultyMin, DifficultyMax)
	n := float64(result.SessionsUsed)
	result.ConfidenceLevel = n / (n + cfg.CalibrationHalfLife)

	return result
}

// AdaptDifficultyRealTime nudges the current difficulty by at most one point
// based on rolling accuracy over the most recent sessions. The nudge fires
// only when the out-of-band condition holds for every session across a full
// adaptation window; a single outlier session never moves the difficulty,
// which keeps the level from oscillating.
func AdaptDifficultyRealTime(cfg EngineConfig, currentDifficulty float64, recentSessions []LearningSession) float64 {
	currentDifficulty = clamp(currentDifficulty, DifficultyMin, DifficultyMax)

	window := cfg.AdaptationWindow
	if len(recentSessions) < window {
		return currentDifficulty
	}

	recent := recentSessions[len(recentSessions)-window:]
	allBelow, allAbove := true, true
	for i := range recent {
		acc := recent[i].Accuracy()
		if recent[i].TotalQuestions <= 0 {
			// Unscored sessions carry no accuracy evidence either way.
			allBelow, allAbove = false, false
			break
		}
		if acc >= cfg.TargetAccuracyLow {
			allBelow = false
		}
		if acc <= cfg.TargetAccuracyHigh {
			allAbove = false
		}
	}

	switch {
	case allBelow:
		return clamp(currentDifficulty-1, DifficultyMin, DifficultyMax)
	case allAbove:
		return clamp(currentDifficulty+1, DifficultyMin, DifficultyMax)
	default:
		return currentDifficulty
	}
}
