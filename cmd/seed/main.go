// seed genera el script SQL de arranque de un negocio: el negocio ACTIVE, sus ubicaciones
// (desde un CSV "name,city,is_default") y el usuario dueño con membresía OWNER.
//
// Uso: go run ./cmd/seed -business "Tienda Centro" -subdomain centro \
//
//	-owner-email dueno@tienda.co -owner-password secreto [-latin1] [-out seed.sql] ubicaciones.csv
//
// Sin -out escribe en la salida estándar.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	var (
		t      tenant
		latin1 bool
		out    string
	)
	flag.StringVar(&t.BusinessName, "business", "", "nombre del negocio")
	flag.StringVar(&t.Subdomain, "subdomain", "", "subdominio para resolución por host (opcional)")
	flag.StringVar(&t.OwnerEmail, "owner-email", "", "email del dueño")
	flag.StringVar(&t.OwnerName, "owner-name", "", "nombre del dueño")
	flag.StringVar(&t.OwnerPassword, "owner-password", "", "password inicial del dueño")
	flag.BoolVar(&latin1, "latin1", false, "el CSV viene en ISO-8859-1")
	flag.StringVar(&out, "out", "", "archivo de salida")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Uso: seed [flags] ubicaciones.csv")
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	locs, err := readLocations(f, latin1)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	t.Locations = locs

	script, err := buildScript(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar script: %v\n", err)
		os.Exit(1)
	}

	if out == "" {
		fmt.Print(script)
		return
	}
	if err := os.WriteFile(out, []byte(script), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir archivo: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado %s: negocio %q, %d ubicaciones\n", out, t.BusinessName, len(locs))
}
