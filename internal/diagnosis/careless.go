package diagnosis

// CarelessAccuracyThreshold is the minimum session accuracy (exclusive)
// for a wrong answer to be classified as a careless error.
const CarelessAccuracyThreshold = 0.80

// carelessMinAttempts avoids judging accuracy from one or two answers.
const carelessMinAttempts = 3

// CarelessClassifier flags wrong answers from high-accuracy students as
// careless slips rather than knowledge gaps.
type CarelessClassifier struct{}

func (c *CarelessClassifier) Name() string { return "careless" }

func (c *CarelessClassifier) Classify(input *ClassifyInput) (MistakeType, float64) {
	if input.Attempted >= carelessMinAttempts && input.Accuracy > CarelessAccuracyThreshold {
		return MistakeCareless, 0.8
	}
	return "", 0
}
