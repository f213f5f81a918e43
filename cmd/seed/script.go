package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// tenant datos de arranque de un negocio: el negocio, sus ubicaciones y el dueño.
type tenant struct {
	BusinessName  string
	Subdomain     string
	OwnerEmail    string
	OwnerName     string
	OwnerPassword string
	Locations     []location
}

type location struct {
	Name      string
	City      string
	IsDefault bool
}

// readLocations lee el CSV "name,city,is_default" con encabezado.
// Las exportaciones de hoja de cálculo suelen venir en ISO-8859-1; latin1 las convierte a UTF-8.
func readLocations(r io.Reader, latin1 bool) ([]location, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []location
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		if header {
			header = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
				continue
			}
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		l := location{Name: strings.TrimSpace(rec[0])}
		if len(rec) > 1 {
			l.City = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(rec[2]))
			if err != nil {
				return nil, fmt.Errorf("is_default inválido en %q: %w", l.Name, err)
			}
			l.IsDefault = b
		}
		out = append(out, l)
	}
	return out, nil
}

// buildScript genera el SQL idempotente del negocio. Sin ubicación marcada, la primera queda por defecto.
func buildScript(t tenant) (string, error) {
	if strings.TrimSpace(t.BusinessName) == "" || strings.TrimSpace(t.OwnerEmail) == "" || t.OwnerPassword == "" {
		return "", errors.New("nombre del negocio, email y password del dueño son requeridos")
	}
	if len(t.Locations) == 0 {
		return "", errors.New("se requiere al menos una ubicación")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(t.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	hasDefault := false
	for _, l := range t.Locations {
		hasDefault = hasDefault || l.IsDefault
	}

	businessID := uuid.New().String()
	userID := uuid.New().String()
	email := strings.ToLower(strings.TrimSpace(t.OwnerEmail))

	var b strings.Builder
	fmt.Fprintf(&b, "-- Negocio %s\nBEGIN;\n\n", t.BusinessName)

	b.WriteString("-- 1. Negocio\n")
	fmt.Fprintf(&b, "INSERT INTO businesses (id, name, slug, subdomain, status)\nVALUES ('%s', '%s', '%s', %s, 'ACTIVE');\n\n",
		businessID, escapeSQL(t.BusinessName), escapeSQL(slug(t.BusinessName)), nullable(strings.ToLower(t.Subdomain)))

	b.WriteString("-- 2. Ubicaciones\n")
	for i, l := range t.Locations {
		isDefault := l.IsDefault || (!hasDefault && i == 0)
		fmt.Fprintf(&b, "INSERT INTO locations (id, business_id, name, city, is_default)\nVALUES ('%s', '%s', '%s', '%s', %t);\n",
			uuid.New().String(), businessID, escapeSQL(l.Name), escapeSQL(l.City), isDefault)
	}

	b.WriteString("\n-- 3. Dueño (se reutiliza si el email ya existe)\n")
	fmt.Fprintf(&b, "INSERT INTO users (id, email, password_hash, name, status)\nVALUES ('%s', '%s', '%s', '%s', 'active')\nON CONFLICT ((lower(email))) DO NOTHING;\n\n",
		userID, escapeSQL(email), string(hash), escapeSQL(t.OwnerName))

	b.WriteString("-- 4. Membresía OWNER\n")
	fmt.Fprintf(&b, "INSERT INTO memberships (id, user_id, business_id, role, status)\nSELECT '%s', id, '%s', 'OWNER', 'ACTIVE' FROM users WHERE lower(email) = '%s'\nON CONFLICT (user_id, business_id) DO NOTHING;\n\n",
		uuid.New().String(), businessID, escapeSQL(email))

	b.WriteString("COMMIT;\n")
	return b.String(), nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func nullable(s string) string {
	if strings.TrimSpace(s) == "" {
		return "NULL"
	}
	return "'" + escapeSQL(strings.TrimSpace(s)) + "'"
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
