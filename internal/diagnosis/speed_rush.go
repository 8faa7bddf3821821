package diagnosis

// SpeedRushThresholdSeconds is the maximum response time (exclusive) for a
// wrong answer to be classified as a speed-rush.
const SpeedRushThresholdSeconds = 3

// SpeedRushClassifier flags answers submitted too quickly as speed-rush errors.
type SpeedRushClassifier struct{}

func (c *SpeedRushClassifier) Name() string { return "speed-rush" }

func (c *SpeedRushClassifier) Classify(input *ClassifyInput) (MistakeType, float64) {
	if input.TimeTakenSeconds > 0 && input.TimeTakenSeconds < SpeedRushThresholdSeconds {
		return MistakeSpeedRush, 0.9
	}
	return "", 0
}
