package diagnosis

import (
	"testing"

	"github.com/abhisek/buddy/internal/question"
)

func TestSpeedRushClassifier(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    MistakeType
	}{
		{"under threshold", 2, MistakeSpeedRush},
		{"at threshold", 3, ""},
		{"over threshold", 10, ""},
		{"unknown time", 0, ""},
	}
	c := &SpeedRushClassifier{}
	for _, tt := range tests {
		got, _ := c.Classify(&ClassifyInput{TimeTakenSeconds: tt.seconds})
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCarelessClassifier(t *testing.T) {
	tests := []struct {
		name      string
		accuracy  float64
		attempted int
		want      MistakeType
	}{
		{"high accuracy", 0.85, 5, MistakeCareless},
		{"at threshold", 0.80, 5, ""},
		{"low accuracy", 0.60, 5, ""},
		{"too few answers", 1.0, 2, ""},
	}
	c := &CarelessClassifier{}
	for _, tt := range tests {
		got, conf := c.Classify(&ClassifyInput{Accuracy: tt.accuracy, Attempted: tt.attempted})
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
		if got != "" && conf != 0.8 {
			t.Errorf("%s: confidence %f, want 0.8", tt.name, conf)
		}
	}
}

func TestNearMissClassifier(t *testing.T) {
	q := &question.Question{Type: question.TypeNumeric, Numeric: &question.Numeric{CorrectAnswer: 50, Tolerance: 0.01}}
	tests := []struct {
		answer string
		want   MistakeType
	}{
		{"52", MistakeNearMiss},
		{"-50", MistakeNearMiss},
		{"70", ""},
		{"fifty", ""},
	}
	c := &NearMissClassifier{}
	for _, tt := range tests {
		got, _ := c.Classify(&ClassifyInput{Question: q, Answer: tt.answer})
		if got != tt.want {
			t.Errorf("answer %q: got %q, want %q", tt.answer, got, tt.want)
		}
	}

	tf := &question.Question{Type: question.TypeTrueFalse, TrueFalse: &question.TrueFalse{}}
	if got, _ := c.Classify(&ClassifyInput{Question: tf, Answer: "1"}); got != "" {
		t.Errorf("non-numeric question classified as %q", got)
	}
}

func TestClassifyPriority(t *testing.T) {
	q := &question.Question{Type: question.TypeNumeric, Numeric: &question.Numeric{CorrectAnswer: 10}}
	input := &ClassifyInput{Question: q, Answer: "10.5", TimeTakenSeconds: 1, Accuracy: 0.9, Attempted: 5}

	if got := Classify(DefaultClassifiers(), input); got != MistakeSpeedRush {
		t.Errorf("got %q, want speed-rush first", got)
	}

	input.TimeTakenSeconds = 30
	if got := Classify(DefaultClassifiers(), input); got != MistakeNearMiss {
		t.Errorf("got %q, want near-miss", got)
	}

	input.Answer = "40"
	if got := Classify(DefaultClassifiers(), input); got != MistakeCareless {
		t.Errorf("got %q, want careless", got)
	}

	input.Accuracy = 0.2
	if got := Classify(DefaultClassifiers(), input); got != MistakeUnclassified {
		t.Errorf("got %q, want unclassified", got)
	}
}
