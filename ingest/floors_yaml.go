package ingest

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/laborcalc/indemnity-engine/generic"
)

// floorYAML is one floor entry. Every field is read as text so amounts may use
// either decimal convention.
//
//	floors:
//	  - from: 2024-03-01
//	    to: 2024-08-31
//	    amount: "55.000.000,00"
//	    norm: Res. SRT 5/2024
//	    link: https://www.boletinoficial.gob.ar/...
type floorYAML struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Amount string `yaml:"amount"`
	Norm   string `yaml:"norm"`
	Link   string `yaml:"link"`
}

type floorsDocument struct {
	Floors []floorYAML `yaml:"floors"`
}

// ReadFloorsYAML reads a floor schedule from a document with a top-level
// "floors" list, or from a bare list.
func ReadFloorsYAML(r io.Reader) (generic.FloorSchedule, Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return generic.FloorSchedule{}, Report{Dataset: generic.DatasetFloors}, fmt.Errorf("read floors: %w", err)
	}

	var entries []floorYAML
	var doc floorsDocument
	if err := yaml.Unmarshal(data, &doc); err == nil {
		entries = doc.Floors
	} else if err := yaml.Unmarshal(data, &entries); err != nil {
		return generic.FloorSchedule{}, Report{Dataset: generic.DatasetFloors}, fmt.Errorf("parse floors: %w", err)
	}

	rep := Report{
		Dataset: generic.DatasetFloors,
		Rows:    len(entries),
		Columns: map[string]string{"from": "from", "to": "to", "amount": "amount", "norm": "norm", "link": "link"},
	}

	var records []generic.FloorRecord
	for i, e := range entries {
		rec, reason := floorRecord(generic.ParseDate, e.From, e.To, e.Amount, e.Norm, e.Link)
		if reason != "" {
			rep.drop(i, "%s", reason)
			continue
		}
		records = append(records, rec)
	}

	rep.Accepted = len(records)
	return generic.NewFloorSchedule(records), rep, nil
}
