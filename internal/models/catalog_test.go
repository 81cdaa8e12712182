package models

import "testing"

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		game     string
		category string
		ok       bool
	}{
		{"StroopGame", CategoryFocus, true},
		{"PairGame", CategoryFocus, true},
		{"MatrixMemory", CategoryMemory, true},
		{"ReactionTap", CategoryReaction, true},
		{"MathSprint", CategoryLogic, true},
		{"NoSuchGame", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		category, ok := CategoryOf(tc.game)
		if category != tc.category || ok != tc.ok {
			t.Errorf("CategoryOf(%q) = (%q, %v), want (%q, %v)", tc.game, category, ok, tc.category, tc.ok)
		}
	}
}

func TestValidGame(t *testing.T) {
	for _, game := range AllGames() {
		if !ValidGame(game) {
			t.Errorf("catalog game %q rejected", game)
		}
	}
	if ValidGame("Tetris") {
		t.Error("unknown game accepted")
	}
}

func TestValidCategory(t *testing.T) {
	for _, category := range AllCategories() {
		if !ValidCategory(category) {
			t.Errorf("catalog category %q rejected", category)
		}
	}
	if ValidCategory("Speed") {
		t.Error("unknown category accepted")
	}
}

func TestPointScoringGamesExcludesReaction(t *testing.T) {
	scoring := PointScoringGames()
	if len(scoring) == 0 {
		t.Fatal("no point-scoring games")
	}

	for _, game := range scoring {
		category, _ := CategoryOf(game)
		if category == CategoryReaction {
			t.Errorf("reaction game %q listed as point-scoring", game)
		}
		if LowerIsBetter(game) {
			t.Errorf("lower-is-better game %q listed as point-scoring", game)
		}
	}

	// Tous les jeux hors Reaction rapportent des points
	for _, game := range AllGames() {
		if category, _ := CategoryOf(game); category == CategoryReaction {
			continue
		}
		found := false
		for _, s := range scoring {
			if s == game {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("game %q missing from point-scoring list", game)
		}
	}
}

func TestLowerIsBetter(t *testing.T) {
	if !LowerIsBetter("ReactionTap") || !LowerIsBetter("QuickCount") {
		t.Error("reaction games should rank lower scores first")
	}
	if LowerIsBetter("MatrixMemory") {
		t.Error("memory game ranked lower-is-better")
	}
}

func TestTaskKindValid(t *testing.T) {
	for _, kind := range AllTaskKinds() {
		if !kind.Valid() {
			t.Errorf("kind %q rejected", kind)
		}
	}
	if TaskKind("rounds_in_universe").Valid() {
		t.Error("unknown kind accepted")
	}
}

func TestMilestoneByID(t *testing.T) {
	for _, id := range []string{"first_workout", "hundred_rounds", "week_of_tasks", "all_categories"} {
		milestone, ok := MilestoneByID(id)
		if !ok {
			t.Errorf("milestone %q not found", id)
			continue
		}
		if milestone.ID != id {
			t.Errorf("MilestoneByID(%q) returned %q", id, milestone.ID)
		}
		if milestone.MaxProgress <= 0 {
			t.Errorf("milestone %q has max progress %d", id, milestone.MaxProgress)
		}
	}

	if _, ok := MilestoneByID("wrong_id"); ok {
		t.Error("unknown milestone found")
	}
}

func TestEntriesComplete(t *testing.T) {
	task := &Task{Kind: TaskPointsInEachGame, TargetValue: 1000}
	if task.EntriesComplete() {
		t.Error("task with no entries reported complete")
	}

	task.Entries = []*TaskProgressEntry{
		{GameName: "StroopGame", Points: 1000},
		{GameName: "FocusTarget", Points: 999},
	}
	if task.EntriesComplete() {
		t.Error("complete with entry below target")
	}

	task.Entries[1].Points = 1000
	if !task.EntriesComplete() {
		t.Error("not complete with all entries at target")
	}
}
