package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/nginx-vuln-list-update/nginx"
	"github.com/aquasecurity/nginx-vuln-list-update/utils"
)

var (
	target = flag.String("target", "", "update target (nginx)")
	dump   = flag.Bool("dump", false, "print advisories to stdout as JSON lines instead of writing the vuln-list tree")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	now := time.Now().UTC()
	vulnListDir := utils.VulnListDir()

	switch *target {
	case "nginx":
		nc := nginx.NewConfig(nginx.WithVulnListDir(vulnListDir))
		if *dump {
			return dumpAdvisories(nc)
		}
		log.Printf("vuln-list directory is %s\n", vulnListDir)
		if err := nc.Update(); err != nil {
			return xerrors.Errorf("error in nginx update: %w", err)
		}
	default:
		return xerrors.New("unknown target")
	}

	if os.Getenv("VULN_LIST_DEBUG") != "" {
		return nil
	}

	fs := utils.NewFs(afero.NewOsFs())
	if err := fs.SetLastUpdatedDate(vulnListDir, *target, now); err != nil {
		return err
	}
	return nil
}

func dumpAdvisories(nc nginx.Config) error {
	enc := json.NewEncoder(os.Stdout)
	for advisory, err := range nc.Advisories() {
		if err != nil {
			return xerrors.Errorf("error in nginx advisories: %w", err)
		}
		if err = enc.Encode(advisory); err != nil {
			return xerrors.Errorf("failed to encode nginx advisory: %w", err)
		}
	}
	return nil
}
