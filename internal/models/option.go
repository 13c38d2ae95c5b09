package models

import "encoding/json"

// Option table names as the backend knows them.
const (
	TableCompanies = "companies_table"
	TableProjects  = "projects_table"
	TableHourTypes = "hourtype_table"
	TableTaskTypes = "tasktype_table"
)

// OptionTables lists every option namespace. Each table is an independent
// cache partition; ids are only unique within their own table.
var OptionTables = []string{TableCompanies, TableProjects, TableHourTypes, TableTaskTypes}

// Option is one lookup value (a company, project, hour type or task type).
// RelationshipID is set when the option came back scoped to a user or
// company relation.
type Option struct {
	ID             FlexID `json:"id"`
	Label          string `json:"option"`
	RelationshipID FlexID `json:"relationship_id,omitempty"`
}

// optionWire tolerates the label-key drift across backend endpoints, which
// variously use "option", "options" and "name" for the same field.
type optionWire struct {
	ID             FlexID `json:"id"`
	Option         string `json:"option"`
	Options        string `json:"options"`
	Name           string `json:"name"`
	RelationshipID FlexID `json:"relationship_id"`
}

// UnmarshalJSON normalizes the wire shape into the canonical Option.
func (o *Option) UnmarshalJSON(data []byte) error {
	var w optionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	label := w.Option
	if label == "" {
		label = w.Options
	}
	if label == "" {
		label = w.Name
	}
	*o = Option{ID: w.ID, Label: label, RelationshipID: w.RelationshipID}
	return nil
}
