package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Neither prompt has format placeholders.
const (
	// PromptAnalysisSystem is sent as the request's system instruction.
	PromptAnalysisSystem = "analysis_system"

	// PromptAnalysisUser is the trailing text block after the images.
	PromptAnalysisUser = "analysis_user"
)
