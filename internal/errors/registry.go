package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Registered error codes.
const (
	CodeContainerNotFound = "E001"
	CodeNodeNotFound      = "E002"
	CodeParentNotScene    = "E003"
	CodeDuplicateUID      = "E004"
	CodeAlreadyInScene    = "E005"
	CodeNotInParentScene  = "E006"
	CodeSourceNotFound    = "E007"
	CodeMissingSceneItem  = "E008"
	CodeNodeInUse         = "E009"
	CodeCycle             = "E010"

	CodeInvalidSize     = "E020"
	CodeInvalidType     = "E021"
	CodeUnknownEnum     = "E022"
	CodeStyleNotObject  = "E023"
	CodeInvalidSetting  = "E024"
	CodeUnknownStyleKey = "E025"

	CodeCreateSourceFailed = "E040"
	CodeSceneAddFailed     = "E041"

	CodeMalformedMessage = "E060"
	CodeEmptyMessage     = "E061"
	CodeUnknownMessage   = "E062"
	CodeFrameTooLarge    = "E063"

	CodeBindFailed   = "E080"
	CodeAcceptFailed = "E081"
	CodeWriteFailed  = "E082"
	CodeHandlerPanic = "E083"

	CodeConfigInvalid  = "E120"
	CodeConfigValue    = "E121"
	CodeConfigNotFound = "E122"

	CodeProbeFailed = "E140"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reference Errors (E001-E019)
	// ============================================

	CodeContainerNotFound: {
		Category:   CategoryReference,
		Message:    "Container not found",
		Detail:     "The command names a container uid that is not registered. Containers are registered by find_source or by creating a scene.",
		Suggestion: "Send find_source for the root scene before creating children in it.",
	},
	CodeNodeNotFound: {
		Category: CategoryReference,
		Message:  "Node not found",
		Detail:   "The command references a uid that is not registered.",
	},
	CodeParentNotScene: {
		Category: CategoryReference,
		Message:  "Parent is not a scene",
		Detail:   "Only scenes can hold children.",
	},
	CodeDuplicateUID: {
		Category:   CategoryReference,
		Message:    "UID already registered",
		Detail:     "A live node already holds this uid. The command was dropped and the new compositor element released.",
		Suggestion: "Remove the existing node or use a fresh uid.",
	},
	CodeAlreadyInScene: {
		Category: CategoryReference,
		Message:  "Source already added to a scene",
		Detail:   "A source can be placed in one scene at a time.",
	},
	CodeNotInParentScene: {
		Category: CategoryReference,
		Message:  "Child is not in the parent scene",
		Detail:   "remove_child names a parent that does not hold the child.",
	},
	CodeSourceNotFound: {
		Category: CategoryReference,
		Message:  "Source not found",
		Detail:   "No compositor source has the requested name.",
	},
	CodeMissingSceneItem: {
		Category: CategoryReference,
		Message:  "Node has no scene item",
		Detail:   "A managed node was laid out but has not been appended to a scene.",
	},
	CodeNodeInUse: {
		Category:   CategoryReference,
		Message:    "Node is still in use",
		Detail:     "The node is the container of other nodes or still has children attached.",
		Suggestion: "Remove its children and the nodes created in it first.",
	},
	CodeCycle: {
		Category: CategoryReference,
		Message:  "Append would create a cycle",
		Detail:   "The child is the parent itself or one of its ancestors.",
	},

	// ============================================
	// Value Errors (E020-E039)
	// ============================================

	CodeInvalidSize: {
		Category:   CategoryValue,
		Message:    "Invalid size value",
		Detail:     "Sizes are numbers, \"<n>px\", \"<n>%\" or a bare numeric string.",
		Suggestion: "Use \"120px\" or \"50%\".",
	},
	CodeInvalidType: {
		Category: CategoryValue,
		Message:  "Invalid value type",
		Detail:   "The style attribute expects a different value type.",
	},
	CodeUnknownEnum: {
		Category: CategoryValue,
		Message:  "Unknown enum value",
		Detail:   "The style attribute does not accept this keyword. The attribute was left unchanged.",
	},
	CodeStyleNotObject: {
		Category: CategoryValue,
		Message:  "Style must be an object",
	},
	CodeInvalidSetting: {
		Category: CategoryValue,
		Message:  "Unsupported setting value",
	},
	CodeUnknownStyleKey: {
		Category: CategoryValue,
		Message:  "Unknown style attribute",
	},

	// ============================================
	// Compositor Errors (E040-E059)
	// ============================================

	CodeCreateSourceFailed: {
		Category: CategoryCompositor,
		Message:  "Failed to create compositor element",
	},
	CodeSceneAddFailed: {
		Category: CategoryCompositor,
		Message:  "Failed to add source to scene",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	CodeMalformedMessage: {
		Category: CategoryProtocol,
		Message:  "Malformed message",
		Detail:   "The frame payload does not parse as a client message. The connection is closed.",
	},
	CodeEmptyMessage: {
		Category: CategoryProtocol,
		Message:  "Empty message",
		Detail:   "The client message carries no payload. The connection is closed.",
	},
	CodeUnknownMessage: {
		Category: CategoryProtocol,
		Message:  "Unknown message",
		Detail:   "The client message uses a variant this server does not know. The connection is closed.",
	},
	CodeFrameTooLarge: {
		Category: CategoryProtocol,
		Message:  "Frame too large",
	},

	// ============================================
	// Transport Errors (E080-E099)
	// ============================================

	CodeBindFailed: {
		Category:   CategoryTransport,
		Message:    "Failed to bind listener",
		Suggestion: "Check that no other process uses the port, or change server.address.",
	},
	CodeAcceptFailed: {
		Category: CategoryTransport,
		Message:  "Failed to accept connection",
	},
	CodeWriteFailed: {
		Category: CategoryTransport,
		Message:  "Failed to send message",
	},
	CodeHandlerPanic: {
		Category: CategoryTransport,
		Message:  "Message handler panicked",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	CodeConfigInvalid: {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check reactobs.json or reactobs.yaml for syntax errors.",
	},
	CodeConfigValue: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create reactobs.json or reactobs.yaml, or pass --config.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	CodeProbeFailed: {
		Category:   CategoryCLI,
		Message:    "Probe failed",
		Suggestion: "Check that the server is running and the address is correct.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
