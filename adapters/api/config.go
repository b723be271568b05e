package api

// ServerConfig holds HTTP transport settings
type ServerConfig struct {
	// MaxUploadBytes caps a whole multipart request body
	MaxUploadBytes int64 `json:"max_upload_bytes"`
	// MaxMemoryBytes is how much of a form is buffered in memory before spilling to disk
	MaxMemoryBytes int64 `json:"max_memory_bytes"`
}

// DefaultServerConfig returns sensible defaults for upload handling
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		MaxUploadBytes: 64 << 20,
		MaxMemoryBytes: 32 << 20,
	}
}
