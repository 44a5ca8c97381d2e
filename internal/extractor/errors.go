package extractor

import "errors"

var (
	// ErrNotRecipe means the page was read fine but holds no recipe-shaped content.
	ErrNotRecipe = errors.New("no recipe found on page")

	// ErrIncompleteRecipe means a recipe was found without ingredients or instructions.
	ErrIncompleteRecipe = errors.New("recipe is missing ingredients or instructions")

	// ErrNoRecipeFound is returned by the orchestrator when every strategy failed.
	ErrNoRecipeFound = errors.New("no extraction strategy produced a recipe")

	// ErrNotPDF is returned when content sniffed is not a valid PDF.
	ErrNotPDF = errors.New("content is not a valid PDF")

	// ErrNoVideoID is returned when a YouTube URL carries no recognisable video ID.
	ErrNoVideoID = errors.New("could not extract video ID from URL")
)

// ErrUnsupportedContentType is returned when a strategy cannot read the
// fetched content at all, such as an image served for a recipe URL.
var ErrUnsupportedContentType = errors.New("unsupported content type")
