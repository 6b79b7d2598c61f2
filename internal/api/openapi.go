package api

import (
	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/pipeline"
	"github.com/SmartChain-HD/AI/internal/prompts"
	"github.com/SmartChain-HD/AI/pkg/openapi"
)

const packageIDPattern = "^" + pipeline.PackagePrefix + "[0-9A-F]{12}$"

// NewSpec describes the API module's endpoints. Paths are relative to the
// module's base path, which is listed as the only server.
func NewSpec(cfg *config.Config, domains []string) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(schemas(domains))

	errors := func(codes ...int) map[int]*openapi.Response {
		names := map[int]string{
			400: "BadRequest",
			401: "Unauthorized",
			404: "NotFound",
			422: "UnprocessableEntity",
		}
		out := make(map[int]*openapi.Response, len(codes))
		for _, c := range codes {
			out[c] = openapi.ResponseRef(names[c])
		}
		return out
	}

	with := func(ok *openapi.Response, errs map[int]*openapi.Response) map[int]*openapi.Response {
		errs[200] = ok
		return errs
	}

	spec.Paths["/run/preview"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Match added files to slots and report package coverage",
			Tags:        []string{"run"},
			RequestBody: openapi.RequestBodyJSON("PreviewRequest", true),
			Responses:   with(openapi.ResponseJSON("Package coverage", "PreviewResponse"), errors(400, 401, 404, 422)),
		},
	}
	spec.Paths["/run/submit"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Validate every file of a package and return the report",
			Tags:        []string{"run"},
			RequestBody: openapi.RequestBodyJSON("SubmitRequest", true),
			Responses:   with(openapi.ResponseJSON("Validation report", "Report"), errors(400, 401, 422)),
		},
	}
	spec.Paths["/run/catalog/{domain}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Describe the slots and reason codes of a domain",
			Tags:       []string{"run"},
			Parameters: []*openapi.Parameter{domainParam(domains)},
			Responses:  with(openapi.ResponseJSON("Domain checklist", "Catalog"), errors(400, 401)),
		},
	}
	spec.Paths["/run/packages"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List stored packages",
			Tags:    []string{"packages"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("domain", "string", "Only packages of this domain", false),
			},
			Responses: with(openapi.ResponseJSON("Package page", "PackagePage"), errors(400, 401)),
		},
	}
	spec.Paths["/run/packages/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get a package with its accumulated slot hints",
			Tags:       []string{"packages"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Package ID", packageIDPattern)},
			Responses:  with(openapi.ResponseJSON("Package", "Package"), errors(401, 404)),
		},
	}
	spec.Paths["/prompts/stages"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List the model call stages",
			Tags:    []string{"prompts"},
			Responses: with(&openapi.Response{
				Description: "Stage names",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
				},
			}, errors(401)),
		},
	}
	for _, kind := range []string{"instructions", "spec"} {
		params := []*openapi.Parameter{stageParam()}
		if kind == "instructions" {
			params = append(params, openapi.QueryParam("domain", "string", "Domain whose instructions to return", false))
		}
		spec.Paths["/prompts/{stage}/"+kind] = &openapi.PathItem{
			Get: &openapi.Operation{
				Summary:    "Get the " + kind + " text of a stage",
				Tags:       []string{"prompts"},
				Parameters: params,
				Responses:  with(openapi.ResponseJSON("Stage text", "StageContent"), errors(400, 401)),
			},
		}
	}

	return spec
}

func domainParam(domains []string) *openapi.Parameter {
	p := openapi.PathParam("domain", "Evidence domain", "")
	p.Schema.Enum = enum(domains)
	return p
}

func stageParam() *openapi.Parameter {
	stages := prompts.Stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	p := openapi.PathParam("stage", "Model call stage", "")
	p.Schema.Enum = enum(names)
	return p
}

func enum(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func schemas(domains []string) map[string]*openapi.Schema {
	str := func(desc string) *openapi.Schema { return &openapi.Schema{Type: "string", Description: desc} }
	strs := func(desc string) *openapi.Schema {
		return &openapi.Schema{Type: "array", Description: desc, Items: &openapi.Schema{Type: "string"}}
	}
	arr := func(ref string) *openapi.Schema { return &openapi.Schema{Type: "array", Items: openapi.SchemaRef(ref)} }
	date := &openapi.Schema{Type: "string", Format: "date", Example: "2025-01-31"}
	domain := &openapi.Schema{Type: "string", Enum: enum(domains)}
	verdicts := enum([]string{string(evidence.Pass), string(evidence.NeedClarify), string(evidence.NeedFix)})

	return map[string]*openapi.Schema{
		"FileRef": {
			Type:     "object",
			Required: []string{"file_id", "storage_uri"},
			Properties: map[string]*openapi.Schema{
				"file_id":     str("Caller-assigned file identifier"),
				"storage_uri": str("Location of the file: a path, or a file, http(s), s3, gs, or azblob URI"),
				"file_name":   str("Original file name, used for slot matching and routing"),
			},
		},
		"SlotHint": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"file_id":      str("File identifier"),
				"slot_name":    str("Assigned slot"),
				"confidence":   {Type: "number"},
				"match_reason": {Type: "string", Enum: enum([]string{string(evidence.MatchKeyword), string(evidence.MatchFallback)})},
			},
		},
		"PreviewRequest": {
			Type:     "object",
			Required: []string{"domain", "period_start", "period_end"},
			Properties: map[string]*openapi.Schema{
				"domain":           domain,
				"period_start":     date,
				"period_end":       date,
				"package_id":       {Type: "string", Pattern: packageIDPattern, Description: "Omit to open a new package"},
				"added_files":      arr("FileRef"),
				"removed_file_ids": strs("Files to drop from the package"),
			},
		},
		"SlotStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"slot_name":    str(""),
				"display_name": str(""),
				"required":     {Type: "boolean"},
				"status":       {Type: "string", Enum: enum([]string{"SUBMITTED", "MISSING"})},
				"file_ids":     strs(""),
			},
		},
		"PreviewResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"package_id":             str(""),
				"slot_hint":              arr("SlotHint"),
				"required_slot_status":   arr("SlotStatus"),
				"missing_required_slots": strs(""),
			},
		},
		"SubmitRequest": {
			Type:     "object",
			Required: []string{"package_id", "domain", "period_start", "period_end", "files"},
			Properties: map[string]*openapi.Schema{
				"package_id":   {Type: "string", Pattern: packageIDPattern},
				"domain":       domain,
				"period_start": date,
				"period_end":   date,
				"files":        arr("FileRef"),
				"slot_hint":    {Type: "array", Items: openapi.SchemaRef("SlotHint"), Description: "Omit to use the hints stored by earlier previews"},
			},
		},
		"SlotResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"slot_name":    str(""),
				"display_name": str(""),
				"verdict":      {Type: "string", Enum: verdicts},
				"reasons":      strs("Reason codes"),
				"file_ids":     strs(""),
				"file_names":   strs(""),
				"extras":       {Type: "object"},
			},
		},
		"Clarification": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"slot_name": str(""),
				"message":   str(""),
				"points":    strs(""),
				"file_ids":  strs(""),
			},
		},
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"package_id":     str(""),
				"risk_level":     {Type: "string", Enum: enum([]string{string(evidence.RiskLow), string(evidence.RiskMedium), string(evidence.RiskHigh)})},
				"verdict":        {Type: "string", Enum: verdicts},
				"why":            str("Overall explanation"),
				"slot_results":   arr("SlotResult"),
				"clarifications": arr("Clarification"),
				"extras": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"service_why":        str(""),
						"ai_overall_comment": str("Present when the model judge ran"),
					},
				},
			},
		},
		"Catalog": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"domain":       domain,
				"slots":        {Type: "array", Items: &openapi.Schema{Type: "object"}},
				"reason_codes": {Type: "object", Description: "Reason code to description"},
			},
		},
		"Package": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"package_id": str(""),
				"domain":     domain,
				"slot_hints": arr("SlotHint"),
				"created_at": {Type: "string", Format: "date-time"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
		},
		"PackagePage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        arr("Package"),
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"StageContent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"stage":   str(""),
				"domain":  str(""),
				"content": str(""),
			},
		},
	}
}
