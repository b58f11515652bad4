// Package errors provides structured application errors with machine-readable
// codes and retryable detection.
//
// Source failures inside an intersection are never converted to AppError;
// this package covers configuration, validation and input loading.
package errors
