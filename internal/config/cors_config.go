package config

import "strings"

type Cors struct {
	file *File
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

var defaultAllowedOrigins = []string{"http://localhost:8080"}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	origins := defaultAllowedOrigins
	if c.file != nil && len(c.file.Cors.AllowedOrigins) > 0 {
		origins = c.file.Cors.AllowedOrigins
	}
	allowed := make(AllowedOrigins, len(origins))
	for _, o := range origins {
		allowed[o] = nullValue{}
	}
	return allowed
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type"
}
