package catalog

import "testing"

func TestExerciseIDPattern(t *testing.T) {
	valid := []string{"hello-world", "fizzbuzz", "exercise-42"}
	invalid := []string{"Hello-World", "hello_world", "hello world", ""}

	for _, id := range valid {
		if !exerciseIDPattern.MatchString(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}

	for _, id := range invalid {
		if exerciseIDPattern.MatchString(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}
