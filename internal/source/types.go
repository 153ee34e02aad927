package source

// Metadata describes an opened source.
type Metadata struct {
	Type     string `json:"type"`               // "local", "s3"
	URI      string `json:"uri"`                // Canonical URI, usable with Open
	Name     string `json:"name"`               // Short display name (file or key base name)
	Profile  string `json:"profile,omitempty"`  // AWS profile (s3)
	Region   string `json:"region,omitempty"`   // AWS region (s3)
	Endpoint string `json:"endpoint,omitempty"` // Custom S3 endpoint (MinIO, LocalStack)
}
