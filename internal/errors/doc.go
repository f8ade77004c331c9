// Package errors provides coded, categorized errors for the scene server.
//
// Commands from a controller never fail back over the wire: the server
// logs the problem and drops the command. Every such failure is an *Error
// carrying a stable code and a category so logs and metrics can be
// grouped.
//
// # Error Categories
//
//   - transport: listener and connection failures
//   - protocol: frames or messages that cannot be decoded
//   - reference: commands naming unknown or mismatched uids
//   - value: props or style attributes with unusable values
//   - compositor: the compositor rejected an operation
//   - config: configuration file problems
//   - cli: command line failures
//
// # Usage
//
//	err := errors.New(errors.CodeContainerNotFound).WithSubject("root")
//	logger.Error("create_source dropped", "error", err)
//
//	fmt.Print(err.Format())
//	// ERROR E001: Container not found
//	//
//	//   root
//	//   ...
package errors
