package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lectio/lectio-server/internal/domain"
	"github.com/lectio/lectio-server/internal/sse"
	"github.com/lectio/lectio-server/internal/vocab"
)

func (s *Server) registerVocabRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listVocabFolders",
		Method:      http.MethodGet,
		Path:        "/api/v1/vocab/folders",
		Summary:     "List vocabulary folders",
		Tags:        []string{"Vocabulary"},
	}, s.handleListFolders)

	huma.Register(s.api, huma.Operation{
		OperationID: "createVocabFolder",
		Method:      http.MethodPost,
		Path:        "/api/v1/vocab/folders",
		Summary:     "Create a vocabulary folder",
		Tags:        []string{"Vocabulary"},
	}, s.handleCreateFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVocabFolder",
		Method:      http.MethodGet,
		Path:        "/api/v1/vocab/folders/{folderId}",
		Summary:     "Get a vocabulary folder with its items",
		Tags:        []string{"Vocabulary"},
	}, s.handleGetFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameVocabFolder",
		Method:      http.MethodPatch,
		Path:        "/api/v1/vocab/folders/{folderId}",
		Summary:     "Rename a vocabulary folder",
		Tags:        []string{"Vocabulary"},
	}, s.handleRenameFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVocabFolder",
		Method:      http.MethodDelete,
		Path:        "/api/v1/vocab/folders/{folderId}",
		Summary:     "Delete a vocabulary folder",
		Description: "Deletes the folder and all its items",
		Tags:        []string{"Vocabulary"},
	}, s.handleDeleteFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "createVocabItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/vocab/folders/{folderId}/items",
		Summary:     "Add a vocabulary item",
		Tags:        []string{"Vocabulary"},
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateVocabItem",
		Method:      http.MethodPut,
		Path:        "/api/v1/vocab/items/{itemId}",
		Summary:     "Update a vocabulary item",
		Tags:        []string{"Vocabulary"},
	}, s.handleUpdateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVocabItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/vocab/items/{itemId}",
		Summary:     "Delete a vocabulary item",
		Tags:        []string{"Vocabulary"},
	}, s.handleDeleteItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderVocabItems",
		Method:      http.MethodPut,
		Path:        "/api/v1/vocab/folders/{folderId}/order",
		Summary:     "Reorder a folder's items",
		Description: "Replaces the folder's narration order; every item of the folder must appear exactly once",
		Tags:        []string{"Vocabulary"},
	}, s.handleReorderItems)
}

// === DTOs ===

// CreateFolderInput names a new folder.
type CreateFolderInput struct {
	Body struct {
		Name string `json:"name" validate:"required,max=255" doc:"Folder name"`
	}
}

// FolderPathInput identifies a folder by ID.
type FolderPathInput struct {
	FolderID string `path:"folderId" doc:"Folder ID"`
}

// RenameFolderInput renames a folder.
type RenameFolderInput struct {
	FolderID string `path:"folderId" doc:"Folder ID"`
	Body     struct {
		Name string `json:"name" validate:"required,max=255" doc:"New folder name"`
	}
}

// ItemRequest carries the editable fields of a vocabulary item.
type ItemRequest struct {
	Term            string `json:"term" validate:"required,max=512" doc:"The word or phrase to learn"`
	TermLanguage    string `json:"term_language" validate:"required,bcp47" doc:"Language of the term"`
	Meaning         string `json:"meaning" validate:"required,max=2048" doc:"Translation or definition"`
	MeaningLanguage string `json:"meaning_language" validate:"required,bcp47" doc:"Language of the meaning"`
	Example         string `json:"example,omitempty" validate:"max=2048" doc:"Optional example sentence"`
	ExampleLanguage string `json:"example_language,omitempty" validate:"omitempty,bcp47" doc:"Language of the example; defaults to the term language"`
}

// CreateItemInput adds an item to a folder.
type CreateItemInput struct {
	FolderID string `path:"folderId" doc:"Folder ID"`
	Body     ItemRequest
}

// UpdateItemInput replaces an item's fields.
type UpdateItemInput struct {
	ItemID string `path:"itemId" doc:"Item ID"`
	Body   ItemRequest
}

// ItemPathInput identifies an item by ID.
type ItemPathInput struct {
	ItemID string `path:"itemId" doc:"Item ID"`
}

// ReorderItemsInput replaces a folder's item order.
type ReorderItemsInput struct {
	FolderID string `path:"folderId" doc:"Folder ID"`
	Body     struct {
		ItemIDs []string `json:"item_ids" validate:"required,min=1" doc:"All item IDs of the folder in narration order"`
	}
}

// FolderOutput wraps a single folder.
type FolderOutput struct {
	Body domain.VocabFolder
}

// FolderListOutput wraps the folder listing.
type FolderListOutput struct {
	Body struct {
		Folders []*domain.VocabFolder `json:"folders"`
	}
}

// FolderDetailOutput wraps a folder with its items.
type FolderDetailOutput struct {
	Body struct {
		Folder domain.VocabFolder `json:"folder"`
		Items  []domain.VocabItem `json:"items"`
	}
}

// ItemOutput wraps a single item.
type ItemOutput struct {
	Body domain.VocabItem
}

// === Handlers ===

func (s *Server) handleListFolders(ctx context.Context, _ *struct{}) (*FolderListOutput, error) {
	folders, err := s.vocab.ListFolders(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	out := &FolderListOutput{}
	out.Body.Folders = folders
	return out, nil
}

func (s *Server) handleCreateFolder(ctx context.Context, input *CreateFolderInput) (*FolderOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	folder, err := s.vocab.CreateFolder(ctx, s.userID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	s.emitFolderUpdated(folder.ID)
	return &FolderOutput{Body: *folder}, nil
}

func (s *Server) handleGetFolder(ctx context.Context, input *FolderPathInput) (*FolderDetailOutput, error) {
	folder, err := s.vocab.GetFolder(ctx, s.userID, input.FolderID)
	if err != nil {
		return nil, err
	}
	items, err := s.vocab.ItemsByFolder(ctx, s.userID, input.FolderID)
	if err != nil {
		return nil, err
	}

	out := &FolderDetailOutput{}
	out.Body.Folder = *folder
	out.Body.Items = items
	return out, nil
}

func (s *Server) handleRenameFolder(ctx context.Context, input *RenameFolderInput) (*FolderOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.vocab.RenameFolder(ctx, s.userID, input.FolderID, input.Body.Name); err != nil {
		return nil, err
	}
	folder, err := s.vocab.GetFolder(ctx, s.userID, input.FolderID)
	if err != nil {
		return nil, err
	}

	s.emitFolderUpdated(folder.ID)
	return &FolderOutput{Body: *folder}, nil
}

func (s *Server) handleDeleteFolder(ctx context.Context, input *FolderPathInput) (*struct{}, error) {
	if err := s.vocab.DeleteFolder(ctx, s.userID, input.FolderID); err != nil {
		return nil, err
	}

	// A deleted folder may still sit in the playlist; drop it so playback
	// cannot be started against missing content.
	s.engine.RemoveFromPlaylist(input.FolderID)

	s.emitFolderUpdated(input.FolderID)
	return nil, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	item, err := s.vocab.CreateItem(ctx, s.userID, input.FolderID, itemInput(input.Body))
	if err != nil {
		return nil, err
	}

	s.emitFolderUpdated(input.FolderID)
	return &ItemOutput{Body: *item}, nil
}

func (s *Server) handleUpdateItem(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	item, err := s.vocab.UpdateItem(ctx, s.userID, input.ItemID, itemInput(input.Body))
	if err != nil {
		return nil, err
	}

	s.emitFolderUpdated(item.FolderID)
	return &ItemOutput{Body: *item}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *ItemPathInput) (*struct{}, error) {
	item, err := s.vocab.GetItem(ctx, s.userID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if err := s.vocab.DeleteItem(ctx, s.userID, input.ItemID); err != nil {
		return nil, err
	}

	s.emitFolderUpdated(item.FolderID)
	return nil, nil
}

func (s *Server) handleReorderItems(ctx context.Context, input *ReorderItemsInput) (*struct{}, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.vocab.ReorderItems(ctx, s.userID, input.FolderID, input.Body.ItemIDs); err != nil {
		return nil, err
	}

	s.emitFolderUpdated(input.FolderID)
	return nil, nil
}

func itemInput(r ItemRequest) vocab.ItemInput {
	return vocab.ItemInput{
		Term:            r.Term,
		TermLanguage:    r.TermLanguage,
		Meaning:         r.Meaning,
		MeaningLanguage: r.MeaningLanguage,
		Example:         r.Example,
		ExampleLanguage: r.ExampleLanguage,
	}
}

// emitFolderUpdated pushes a folder change notice to connected clients.
func (s *Server) emitFolderUpdated(folderID string) {
	if s.sseManager == nil {
		return
	}
	s.sseManager.Emit(sse.NewFolderUpdatedEvent(s.userID, folderID))
}
