package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/store"
)

const maxImportBytes = 32 << 20

// Importer replaces the whole list while no item is being changed.
type Importer interface {
	Import(ctx context.Context, doc *store.Document) error
}

// TransferHandler handles bulk export and import of the whole list.
type TransferHandler struct {
	store     store.Store
	importer  Importer
	scheduler Rescheduler
}

// NewTransferHandler creates a new TransferHandler. A nil scheduler leaves
// the refresh interval alone when an import changes it.
func NewTransferHandler(s store.Store, imp Importer, sched Rescheduler) *TransferHandler {
	return &TransferHandler{store: s, importer: imp, scheduler: sched}
}

// ExportOutput is the response for the export endpoint.
type ExportOutput struct {
	ContentDisposition string `header:"Content-Disposition"`
	Body               store.Document
}

// ImportInput carries an exported document. The body is decoded by hand so
// documents written by older versions with missing fields still load.
type ImportInput struct {
	RawBody []byte `contentType:"application/json"`
}

// ImportOutput is the response for the import endpoint.
type ImportOutput struct {
	Body struct {
		Status     string `json:"status" example:"imported"`
		Items      int    `json:"items"`
		Categories int    `json:"categories"`
	}
}

// Export returns the complete list document.
func (h *TransferHandler) Export(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	doc, err := h.store.Export(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("exporting: " + err.Error())
	}
	return &ExportOutput{
		ContentDisposition: `attachment; filename="buying-list-export.json"`,
		Body:               *doc,
	}, nil
}

// Import replaces the list with the given document and moves the scheduler
// to the imported refresh interval.
func (h *TransferHandler) Import(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	var doc store.Document
	if err := json.Unmarshal(input.RawBody, &doc); err != nil {
		return nil, huma.Error400BadRequest("invalid document: " + err.Error())
	}

	before, err := h.store.GetSettings(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("getting settings: " + err.Error())
	}

	if err := h.importer.Import(ctx, &doc); err != nil {
		return nil, huma.Error500InternalServerError("importing: " + err.Error())
	}

	after, err := h.store.GetSettings(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("getting settings: " + err.Error())
	}
	if h.scheduler != nil && after.UpdateInterval() != before.UpdateInterval() {
		if err := h.scheduler.Reschedule(after.UpdateInterval()); err != nil {
			return nil, apiError("rescheduling updates", err)
		}
	}

	resp := &ImportOutput{}
	resp.Body.Status = "imported"
	resp.Body.Items = len(doc.Items)
	resp.Body.Categories = len(doc.Categories)
	return resp, nil
}

// RegisterTransferRoutes registers export and import endpoints with the
// Huma API.
func RegisterTransferRoutes(api huma.API, h *TransferHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "export-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export the list",
		Description: "Returns every item, category and the settings as one JSON document.",
		Tags:        []string{"transfer"},
	}, h.Export)

	huma.Register(api, huma.Operation{
		OperationID:  "import-list",
		Method:       http.MethodPost,
		Path:         "/api/v1/import",
		Summary:      "Import a list",
		Description:  "Replaces the whole list with an exported document. Missing parts take defaults.",
		Tags:         []string{"transfer"},
		MaxBodyBytes: maxImportBytes,
		Errors:       []int{http.StatusBadRequest},
	}, h.Import)
}
