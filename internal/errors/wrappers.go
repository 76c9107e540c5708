package errors

import "fmt"

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, source)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("source", source).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error for a single key
func ConfigurationError(key, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", key, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("key", key)
}

// EntryPointError creates an error for a package whose entry point cannot be located
func EntryPointError(packagePath, message string) *BaseError {
	fullMessage := fmt.Sprintf("cannot locate entry point of '%s': %s", packagePath, message)
	return New(EntryPointErrorCode, fullMessage).
		WithContext("package", packagePath)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err ReflectError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
