package service

import (
	"testing"

	"progress/internal/models"
)

func newTestStatsService(userID string) (*StatsService, *fakeProfileRepo, *fakeStatsClient) {
	profiles := newFakeProfileRepo(userID)
	client := newFakeStatsClient()
	return NewStatsService(profiles, client, testConfig()), profiles, client
}

func TestRecordScoreFirstScoreIsBest(t *testing.T) {
	s, _, client := newTestStatsService("user-1")

	res := <-s.RecordScore("MatrixMemory", 850)
	if res.Err != nil {
		t.Fatalf("RecordScore: %v", res.Err)
	}
	if !res.Updated || res.Best != 850 {
		t.Errorf("got updated=%v best=%d, want updated=true best=850", res.Updated, res.Best)
	}
	if client.stats["MatrixMemory"].BestScore != 850 {
		t.Errorf("remote best = %d, want 850", client.stats["MatrixMemory"].BestScore)
	}
}

func TestRecordScoreHigherIsBetter(t *testing.T) {
	s, _, client := newTestStatsService("user-1")

	<-s.RecordScore("MatrixMemory", 850)

	// Score égal ou inférieur : pas d'écriture
	res := <-s.RecordScore("MatrixMemory", 850)
	if res.Err != nil {
		t.Fatalf("RecordScore: %v", res.Err)
	}
	if res.Updated {
		t.Error("equal score overwrote best")
	}
	if res.Best != 850 {
		t.Errorf("best = %d, want 850", res.Best)
	}

	res = <-s.RecordScore("MatrixMemory", 600)
	if res.Updated {
		t.Error("lower score overwrote best")
	}

	res = <-s.RecordScore("MatrixMemory", 900)
	if !res.Updated || res.Best != 900 {
		t.Errorf("got updated=%v best=%d, want updated=true best=900", res.Updated, res.Best)
	}

	_, patches := client.calls()
	if patches != 2 {
		t.Errorf("expected 2 remote writes, got %d", patches)
	}
}

func TestRecordScoreLowerIsBetter(t *testing.T) {
	s, _, client := newTestStatsService("user-1")

	// ReactionTap : un temps, plus petit gagne. 0 vaut "jamais joué",
	// pas "imbattable".
	res := <-s.RecordScore("ReactionTap", 120)
	if !res.Updated || res.Best != 120 {
		t.Fatalf("got updated=%v best=%d, want updated=true best=120", res.Updated, res.Best)
	}

	res = <-s.RecordScore("ReactionTap", 80)
	if !res.Updated || res.Best != 80 {
		t.Fatalf("got updated=%v best=%d, want updated=true best=80", res.Updated, res.Best)
	}

	res = <-s.RecordScore("ReactionTap", 95)
	if res.Updated {
		t.Error("slower time overwrote best")
	}
	if client.stats["ReactionTap"].BestScore != 80 {
		t.Errorf("remote best = %d, want 80", client.stats["ReactionTap"].BestScore)
	}
}

func TestRecordScoreUnknownGame(t *testing.T) {
	s, _, client := newTestStatsService("user-1")

	// Consommer jusqu'à fermeture : le canal doit se terminer même sur
	// le chemin de refus, les consommateurs font un range dessus
	var results []models.ScoreResult
	for res := range s.RecordScore("NoSuchGame", 100) {
		results = append(results, res)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result before close, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Fatal("expected error for unknown game")
	}

	gets, patches := client.calls()
	if gets != 0 || patches != 0 {
		t.Errorf("remote touched for unknown game: %d gets, %d patches", gets, patches)
	}
}

func TestRecordRoundPlayedUnknownGame(t *testing.T) {
	s, profiles, client := newTestStatsService("user-1")

	var results []models.RoundPlayedResult
	for res := range s.RecordRoundPlayed("NoSuchGame") {
		results = append(results, res)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result before close, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Fatal("expected error for unknown game")
	}

	if profiles.experience() != 0 {
		t.Errorf("experience awarded for unknown game: %d", profiles.experience())
	}
	gets, patches := client.calls()
	if gets != 0 || patches != 0 {
		t.Errorf("remote touched for unknown game: %d gets, %d patches", gets, patches)
	}
}

func TestRecordScoreAnonymousIsNoop(t *testing.T) {
	s, _, client := newTestStatsService("")

	res := <-s.RecordScore("MatrixMemory", 850)
	if res.Err != nil {
		t.Fatalf("anonymous score reported error: %v", res.Err)
	}
	if res.Updated {
		t.Error("anonymous score marked as applied")
	}

	gets, patches := client.calls()
	if gets != 0 || patches != 0 {
		t.Errorf("remote touched for anonymous player: %d gets, %d patches", gets, patches)
	}
}

func TestRecordRoundPlayed(t *testing.T) {
	s, profiles, client := newTestStatsService("user-1")

	res := <-s.RecordRoundPlayed("StroopGame")
	if res.Err != nil {
		t.Fatalf("RecordRoundPlayed: %v", res.Err)
	}
	if res.GamesPlayed != 1 {
		t.Errorf("games played = %d, want 1", res.GamesPlayed)
	}
	if res.ExperienceAdded != 50 {
		t.Errorf("experience added = %d, want 50", res.ExperienceAdded)
	}
	if profiles.experience() != 50 {
		t.Errorf("local experience = %d, want 50", profiles.experience())
	}
	if client.profilePatches != 1 {
		t.Errorf("profile patches = %d, want 1", client.profilePatches)
	}

	res = <-s.RecordRoundPlayed("StroopGame")
	if res.GamesPlayed != 2 {
		t.Errorf("games played = %d, want 2", res.GamesPlayed)
	}
	if profiles.experience() != 100 {
		t.Errorf("local experience = %d, want 100", profiles.experience())
	}
}

func TestRecordRoundPlayedExperienceSyncFailure(t *testing.T) {
	s, profiles, client := newTestStatsService("user-1")
	client.failPatchProfile = true

	res := <-s.RecordRoundPlayed("StroopGame")
	if res.Err == nil {
		t.Fatal("expected error when experience sync fails")
	}

	// Le compteur de manches n'est pas annulé, l'expérience locale non plus
	if res.GamesPlayed != 1 {
		t.Errorf("games played = %d, want 1 despite sync failure", res.GamesPlayed)
	}
	if client.stats["StroopGame"].GamesPlayed != 1 {
		t.Errorf("remote games played rolled back to %d", client.stats["StroopGame"].GamesPlayed)
	}
	if profiles.experience() != 50 {
		t.Errorf("local experience = %d, want 50 despite sync failure", profiles.experience())
	}
}

func TestRecordRoundPlayedStatFailureSkipsExperience(t *testing.T) {
	s, profiles, _ := newTestStatsService("user-1")
	client := newFakeStatsClient()
	client.failPatchStat = true
	s.client = client

	res := <-s.RecordRoundPlayed("StroopGame")
	if res.Err == nil {
		t.Fatal("expected error when stat patch fails")
	}

	// Pas d'expérience sans incrément réussi
	if profiles.experience() != 0 {
		t.Errorf("experience awarded despite failed round: %d", profiles.experience())
	}
	if client.profilePatches != 0 {
		t.Errorf("profile patched despite failed round: %d", client.profilePatches)
	}
}

func TestRecordRoundPlayedAnonymousIsNoop(t *testing.T) {
	s, profiles, client := newTestStatsService("")

	res := <-s.RecordRoundPlayed("StroopGame")
	if res.Err != nil {
		t.Fatalf("anonymous round reported error: %v", res.Err)
	}
	if res.GamesPlayed != 0 || res.ExperienceAdded != 0 {
		t.Errorf("anonymous round produced effects: %+v", res)
	}
	if profiles.experience() != 0 {
		t.Errorf("anonymous round granted experience: %d", profiles.experience())
	}

	gets, patches := client.calls()
	if gets != 0 || patches != 0 || client.profilePatches != 0 {
		t.Error("remote touched for anonymous player")
	}
}

func TestBetterScore(t *testing.T) {
	cases := []struct {
		game        string
		score, best int
		want        bool
	}{
		{"MatrixMemory", 100, 0, true},
		{"MatrixMemory", 100, 100, false},
		{"MatrixMemory", 101, 100, true},
		{"ReactionTap", 120, 0, true},
		{"ReactionTap", 80, 120, true},
		{"ReactionTap", 120, 80, false},
		{"ReactionTap", 80, 80, false},
	}

	for _, tc := range cases {
		if got := betterScore(tc.game, tc.score, tc.best); got != tc.want {
			t.Errorf("betterScore(%s, %d, %d) = %v, want %v", tc.game, tc.score, tc.best, got, tc.want)
		}
	}
}
