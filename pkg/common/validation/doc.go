// Package validation provides the checks used by the Validate methods of
// asyncflow configuration structs. Every failure is an
// *errors.ValidationError wrapping errors.ErrInvalidConfiguration.
//
//	func (c Config) Validate() error {
//		return validation.First(
//			validation.Positive("workerpool", "WorkerCount", c.WorkerCount),
//			validation.NonNegative("workerpool", "TaskTimeout", c.TaskTimeout),
//		)
//	}
package validation
