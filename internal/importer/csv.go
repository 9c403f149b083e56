// Package importer loads leads into the pool from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
	"github.com/Deanthehandyman/Newleadsdaily/internal/store"
)

// Result summarizes an import.
type Result struct {
	Created int
	Skipped int
}

var titleCaser = cases.Title(language.English)

// normalizeName title-cases names that arrive all-upper or all-lower,
// which is common in exported contact lists. Mixed-case names are left
// alone to preserve spellings like "McAllister".
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == strings.ToUpper(name) || name == strings.ToLower(name) {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

// ImportCSV reads leads from the CSV at path and inserts them
// concurrently. Expected header: name, phone, email, address, lat, lng,
// is_handyman, is_starlink, is_smarthome; optional source, external_id.
// Rows that fail validation or insertion are logged and skipped, never
// aborting the rest of the file.
func ImportCSV(ctx context.Context, st store.Store, path string, maxConcurrent int) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "import: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return Result{}, eris.Wrap(err, "import: read header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "lat", "lng"} {
		if _, ok := col[required]; !ok {
			return Result{}, eris.Errorf("import: missing required column %q", required)
		}
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	var created, skipped atomic.Int64
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Result{}, eris.Wrapf(err, "import: read line %d", line)
		}

		row := record
		rowLine := line
		g.Go(func() error {
			lead, err := parseLead(row, col)
			if err != nil {
				skipped.Add(1)
				zap.L().Warn("skipping invalid row",
					zap.Int("line", rowLine),
					zap.Error(err),
				)
				return nil
			}

			if _, err := st.CreateLead(gctx, lead); err != nil {
				skipped.Add(1)
				zap.L().Warn("skipping row on insert failure",
					zap.Int("line", rowLine),
					zap.Error(err),
				)
				return nil
			}
			created.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, eris.Wrap(err, "import: process rows")
	}
	return Result{Created: int(created.Load()), Skipped: int(skipped.Load())}, nil
}

func parseLead(row []string, col map[string]int) (*model.Lead, error) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lat, err := strconv.ParseFloat(get("lat"), 64)
	if err != nil {
		return nil, eris.Wrapf(model.ErrInvalidArgument, "bad lat %q", get("lat"))
	}
	lng, err := strconv.ParseFloat(get("lng"), 64)
	if err != nil {
		return nil, eris.Wrapf(model.ErrInvalidArgument, "bad lng %q", get("lng"))
	}

	lead := &model.Lead{
		Name:       normalizeName(get("name")),
		Phone:      get("phone"),
		Email:      get("email"),
		Address:    get("address"),
		Lat:        lat,
		Lng:        lng,
		ExternalID: get("external_id"),
		Categories: model.Categories{
			Handyman:  parseBool(get("is_handyman")),
			Starlink:  parseBool(get("is_starlink")),
			SmartHome: parseBool(get("is_smarthome")),
		},
	}
	if src := get("source"); src != "" {
		lead.Source = model.LeadSource(src)
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
