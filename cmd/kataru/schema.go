package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// storyDocument is a schema-only shadow of the on-disk YAML shape
// pkg/storyyaml parses: a config block plus a map of passage name to
// a list of lines. It exists purely so invopop/jsonschema has
// something to reflect off of — pkg/storyyaml itself discriminates
// line shapes dynamically by key presence rather than decoding into
// typed structs, the way pkg/schema.Runbook does for gert's YAML, so
// there is no runtime type to point the reflector at directly.
type storyDocument struct {
	Characters map[string]characterDoc `yaml:"characters,omitempty" json:"characters,omitempty"`
	Commands   map[string]interface{}  `yaml:"commands,omitempty"   json:"commands,omitempty"`
	State      map[string]interface{}  `yaml:"state,omitempty"      json:"state,omitempty"`
	Attributes map[string]interface{}  `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	OnEnter    map[string]interface{}  `yaml:"on_enter,omitempty"   json:"on_enter,omitempty"`
	OnExit     map[string]interface{}  `yaml:"on_exit,omitempty"    json:"on_exit,omitempty"`
	Passages   map[string][]lineDoc    `yaml:"-"                    json:"passages,omitempty" jsonschema_description:"One entry per passage; each is the second YAML document in the namespace's file."`
}

// characterDoc mirrors story.CharacterData's on-disk shape.
type characterDoc struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// lineDoc is deliberately untyped: a passage line is one of a bare
// string (text), a single-key map (dialogue, goto, call, set, input,
// or a named/positional command), or an "if"/"choices"-keyed map —
// pkg/storyyaml's decodeLine switches on exactly this shape.
// schema validation of a lineDoc can therefore only assert "object or
// string", the same ceiling invopop/jsonschema hits on any
// interface{}-typed field.
type lineDoc map[string]interface{}

// GenerateStorySchema produces a JSON Schema Draft 2020-12 document
// for the on-disk story YAML format, grounded on pkg/schema/export.go's
// GenerateJSONSchema.
func GenerateStorySchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&storyDocument{})
	s.ID = "https://github.com/kataru-lang/kataru/schemas/story-v0.json"
	s.Title = "Kataru Story v0"
	s.Description = "Schema for kataru story YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for the story YAML format",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := GenerateStorySchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var lintSchemaCmd = &cobra.Command{
	Use:   "lint-schema <file.yaml>",
	Short: "Validate a single YAML document against the generated story schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runLintSchema,
}

// runLintSchema mirrors pkg/schema/validate.go's validateSemantic: it
// generates the schema, compiles it with santhosh-tekuri/jsonschema/v6,
// and validates the file's YAML (converted to a generic JSON value)
// against it. It deliberately checks only one file at a time — a
// passage-lines document's shape is the config document's shape's
// sibling, not its subset, so there's no single schema a whole story
// directory validates against without pkg/storyyaml's own
// document-splitting logic running first.
func runLintSchema(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var yamlDoc interface{}
	if err := yaml.Unmarshal(raw, &yamlDoc); err != nil {
		fmt.Fprintf(os.Stderr, "%s structural: %v\n", errorStyle.Render("✗"), err)
		return fmt.Errorf("structural validation failed")
	}
	// Round-trip through encoding/json so numbers, in particular, come
	// out as the float64s the schema validator expects, the same
	// normalization pkg/schema/validate.go's validateSemantic does by
	// marshaling its Runbook struct before validating it.
	asJSON, err := json.Marshal(yamlDoc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	schemaJSON, err := GenerateStorySchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("story-v0.json", schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("story-v0.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		fmt.Fprintf(os.Stderr, "%s semantic: %v\n", errorStyle.Render("✗"), err)
		return fmt.Errorf("semantic validation failed")
	}

	fmt.Println(successStyle.Render("✓") + " matches the generated schema")
	return nil
}
