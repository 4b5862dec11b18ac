package errors

// template defines a registered error code.
type template struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps stable error codes to their templates.
//
// Ranges:
//
//	I1xx render    I2xx route    I3xx loader
//	I4xx state     I5xx session  I6xx assets
//	I7xx config    I8xx cli
var registry = map[string]template{
	"I101": {
		Category:   CategoryRender,
		Message:    "unknown virtual node kind",
		Suggestion: "Construct nodes with the vdom package helpers instead of building VNode values by hand.",
		DocURL:     "https://isora.dev/docs/errors/I101",
	},
	"I102": {
		Category:   CategoryRender,
		Message:    "page handler returned nil",
		Suggestion: "Return a *vdom.VNode from the page handler, or signal NotFound explicitly.",
		DocURL:     "https://isora.dev/docs/errors/I102",
	},
	"I103": {
		Category: CategoryRender,
		Message:  "document write failed",
		DocURL:   "https://isora.dev/docs/errors/I103",
	},
	"I201": {
		Category:   CategoryRoute,
		Message:    "duplicate route registration",
		Suggestion: "Each path may have at most one page handler. Use layouts for shared chrome.",
		DocURL:     "https://isora.dev/docs/errors/I201",
	},
	"I202": {
		Category:   CategoryRoute,
		Message:    "invalid route parameter",
		Suggestion: "Check the declared parameter type against the value in the URL.",
		DocURL:     "https://isora.dev/docs/errors/I202",
	},
	"I301": {
		Category:   CategoryLoader,
		Message:    "loader panicked",
		Suggestion: "Loaders must return errors instead of panicking. The panic value is attached as the cause.",
		DocURL:     "https://isora.dev/docs/errors/I301",
	},
	"I302": {
		Category: CategoryLoader,
		Message:  "loader aborted by request cancellation",
		DocURL:   "https://isora.dev/docs/errors/I302",
	},
	"I401": {
		Category:   CategoryState,
		Message:    "state value is not JSON-serializable",
		Suggestion: "Only JSON-encodable values may be stored for hydration. Wrap custom types with a MarshalJSON method.",
		DocURL:     "https://isora.dev/docs/errors/I401",
	},
	"I501": {
		Category: CategorySession,
		Message:  "session store unavailable",
		DocURL:   "https://isora.dev/docs/errors/I501",
	},
	"I502": {
		Category: CategorySession,
		Message:  "session payload corrupt",
		DocURL:   "https://isora.dev/docs/errors/I502",
	},
	"I601": {
		Category:   CategoryAssets,
		Message:    "asset manifest missing or unreadable",
		Suggestion: "Run the asset build before starting the server, or disable manifest resolution.",
		DocURL:     "https://isora.dev/docs/errors/I601",
	},
	"I602": {
		Category: CategoryAssets,
		Message:  "asset upload failed",
		DocURL:   "https://isora.dev/docs/errors/I602",
	},
	"I701": {
		Category:   CategoryConfig,
		Message:    "configuration file invalid",
		Suggestion: "Validate isora.yaml against the documented schema.",
		DocURL:     "https://isora.dev/docs/errors/I701",
	},
	"I801": {
		Category:   CategoryCLI,
		Message:    "project root not found",
		Suggestion: "Run this command from a directory containing isora.yaml or go.mod.",
		DocURL:     "https://isora.dev/docs/errors/I801",
	},
}

// Register adds or replaces a code at init time. Exposed for tests and
// for applications that want their own coded errors in framework output.
func Register(code string, category Category, message, suggestion, docURL string) {
	registry[code] = template{
		Category:   category,
		Message:    message,
		Suggestion: suggestion,
		DocURL:     docURL,
	}
}
