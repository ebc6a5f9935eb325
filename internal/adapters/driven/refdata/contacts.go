// Package refdata provides file-backed reference data adapters.
package refdata

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

// Ensure ContactDirectory implements the interface.
var _ driven.ContactDirectory = (*ContactDirectory)(nil)

// contactsFile is the TOML shape of the known-contact directory:
//
//	[contacts]
//	"horizon-trading.dj" = "HTD001"
//	"acme-logistics.fr"  = "ACL042"
type contactsFile struct {
	Contacts map[string]string `toml:"contacts"`
}

// ContactDirectory maps sender email domains to client codes, loaded
// once from a TOML file. Lookups are case-insensitive on the domain.
type ContactDirectory struct {
	codes map[string]string
}

// LoadContactDirectory reads the directory from a TOML file. A
// missing file yields an empty directory: the known-contact match is
// optional reference data.
func LoadContactDirectory(path string) (*ContactDirectory, error) {
	d := &ContactDirectory{codes: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("reading contact directory: %w", err)
	}

	var parsed contactsFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing contact directory: %w", err)
	}

	for domain, code := range parsed.Contacts {
		d.codes[strings.ToLower(domain)] = code
	}
	return d, nil
}

// ClientCode returns the client code registered for an email domain,
// or "" when the domain is unknown.
func (d *ContactDirectory) ClientCode(domain string) string {
	return d.codes[strings.ToLower(strings.TrimSpace(domain))]
}
