package diagnosis

import "github.com/abhisek/buddy/internal/question"

// MistakeType classifies a wrong answer.
type MistakeType string

const (
	MistakeCareless     MistakeType = "careless"
	MistakeSpeedRush    MistakeType = "speed-rush"
	MistakeNearMiss     MistakeType = "near-miss"
	MistakeUnclassified MistakeType = "unclassified"
)

// ClassifyInput holds the context for classifying a wrong answer.
type ClassifyInput struct {
	Question         *question.Question
	Answer           string
	TimeTakenSeconds int     // 0 when unknown
	Accuracy         float64 // session accuracy before this answer (0.0–1.0)
	Attempted        int     // questions attempted before this answer
}

// Classifier is a rule-based mistake classifier.
// Returns a type and confidence (0.0–1.0), or ("", 0) if the rule doesn't apply.
type Classifier interface {
	Name() string
	Classify(input *ClassifyInput) (MistakeType, float64)
}

// DefaultClassifiers returns classifiers in priority order.
// Speed-rush has highest priority since a fast wrong answer is more likely
// a rush than a careless slip, even for high-accuracy students.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SpeedRushClassifier{},
		&NearMissClassifier{},
		&CarelessClassifier{},
	}
}

// Classify runs the classifiers in order and returns the first match, or
// MistakeUnclassified when no rule applies.
func Classify(classifiers []Classifier, input *ClassifyInput) MistakeType {
	for _, c := range classifiers {
		if mt, _ := c.Classify(input); mt != "" {
			return mt
		}
	}
	return MistakeUnclassified
}
