package models

// Catalogue fixe des jeux d'entraînement cérébral. Les noms de jeux et de
// catégories servent de clés partout (tâches, stats, succès) ; toute
// validation passe par ce fichier pour éviter les no-op silencieux.

// Catégories de jeux
const (
	CategoryFocus    = "Focus"
	CategoryMemory   = "Memory"
	CategoryReaction = "Reaction"
	CategoryLogic    = "Logic"
)

// categoryGames est la table fixe catégorie -> jeux
var categoryGames = map[string][]string{
	CategoryFocus:    {"StroopGame", "FocusTarget", "PairGame"},
	CategoryMemory:   {"MatrixMemory", "NumberMemory", "SequenceMemory"},
	CategoryReaction: {"ReactionTap", "QuickCount"},
	CategoryLogic:    {"NumberSort", "MathSprint"},
}

// lowerIsBetterGames regroupe les jeux où un score plus petit est meilleur
// (jeux de temps de réaction, score en millisecondes)
var lowerIsBetterGames = map[string]bool{
	"ReactionTap": true,
	"QuickCount":  true,
}

// AllCategories retourne les catégories dans un ordre stable
func AllCategories() []string {
	return []string{CategoryFocus, CategoryMemory, CategoryReaction, CategoryLogic}
}

// GamesInCategory retourne les jeux d'une catégorie (nil si inconnue)
func GamesInCategory(category string) []string {
	games, ok := categoryGames[category]
	if !ok {
		return nil
	}
	out := make([]string, len(games))
	copy(out, games)
	return out
}

// CategoryOf retourne la catégorie d'un jeu
func CategoryOf(game string) (string, bool) {
	for _, category := range AllCategories() {
		for _, g := range categoryGames[category] {
			if g == game {
				return category, true
			}
		}
	}
	return "", false
}

// ValidGame vérifie qu'un jeu existe dans le catalogue
func ValidGame(game string) bool {
	_, ok := CategoryOf(game)
	return ok
}

// ValidCategory vérifie qu'une catégorie existe dans le catalogue
func ValidCategory(category string) bool {
	_, ok := categoryGames[category]
	return ok
}

// AllGames retourne tous les jeux du catalogue
func AllGames() []string {
	var games []string
	for _, category := range AllCategories() {
		games = append(games, categoryGames[category]...)
	}
	return games
}

// PointScoringGames retourne les jeux qui rapportent des points
// (les jeux de réaction sont mesurés en millisecondes, pas en points)
func PointScoringGames() []string {
	var games []string
	for _, g := range AllGames() {
		if !lowerIsBetterGames[g] {
			games = append(games, g)
		}
	}
	return games
}

// LowerIsBetter indique si un score plus petit est meilleur pour ce jeu
func LowerIsBetter(game string) bool {
	return lowerIsBetterGames[game]
}
