package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// maxUploadSize bounds receipt uploads (high-resolution phone photos)
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes {"error": message} with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// handleEstimateItem estimates a single product
func (s *Server) handleEstimateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.EstimateItem(req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleEstimateBasket estimates a basket and optionally saves it
func (s *Server) handleEstimateBasket(w http.ResponseWriter, r *http.Request) {
	var req BasketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	basket, err := s.service.EstimateBasket(r.Context(), req)
	switch {
	case errors.Is(err, ErrEmptyName):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("Error estimating basket", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	code := http.StatusOK
	if req.Save {
		code = http.StatusCreated
	}
	writeJSON(w, code, basket)
}

// readUpload reads the "file" field of a multipart upload. It writes the
// error response itself and reports whether the caller may continue.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return nil, "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return nil, "", false
	}

	// Determine content type
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromExt(header.Filename)
	}
	return data, strings.ToLower(strings.TrimSpace(contentType)), true
}

func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleAssessReceipt reports whether an uploaded photo is usable
func (s *Server) handleAssessReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.service.AssessImage(data, contentType)
	if err != nil {
		slog.Error("Error assessing receipt image", "content_type", contentType, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleEnhanceReceipt returns the enhanced photo as PNG
func (s *Server) handleEnhanceReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	png, err := s.service.EnhanceImage(data, contentType)
	if err != nil {
		slog.Error("Error enhancing receipt image", "content_type", contentType, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		slog.Error("Error writing enhanced image", "error", err)
	}
}

// handleScanReceipt gates a photo on quality, extracts its items and saves the basket
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	basket, assessment, err := s.service.ScanReceipt(r.Context(), data, contentType)
	switch {
	case errors.Is(err, ErrNoExtractor):
		jsonError(w, err.Error(), http.StatusNotImplemented)
		return
	case errors.Is(err, ErrUnusableImage):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   err.Error(),
			"quality": assessment,
		})
		return
	case errors.Is(err, ErrExtractionFailed):
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	case err != nil:
		slog.Error("Error scanning receipt", "content_type", contentType, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, basket)
}

// handleProcessExtraction estimates and saves a basket from extractor JSON
func (s *Server) handleProcessExtraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	basket, err := s.service.ProcessExtraction(r.Context(), string(body))
	if err != nil {
		slog.Error("Error processing extraction", "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, basket)
}

// handleListBaskets returns a list of all saved baskets
func (s *Server) handleListBaskets(w http.ResponseWriter, r *http.Request) {
	baskets, err := s.service.ListBaskets()
	if err != nil {
		slog.Error("Error listing baskets", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if baskets == nil {
		baskets = []*Basket{}
	}
	writeJSON(w, http.StatusOK, baskets)
}

// handleGetBasket returns a single basket
func (s *Server) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	basket, err := s.service.GetBasket(id)
	if err != nil {
		if !errors.Is(err, ErrBasketNotFound) {
			slog.Error("Error getting basket", "id", id, "error", err)
		}
		corsError(w, "Basket not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}

// handleGetBasketImage returns the enhanced receipt image of a scanned basket
func (s *Server) handleGetBasketImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, err := s.service.GetBasketImage(id)
	if err != nil {
		if !errors.Is(err, ErrBasketNotFound) && !errors.Is(err, ErrNoImage) {
			slog.Error("Error getting basket image", "id", id, "error", err)
		}
		corsError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		slog.Error("Error writing basket image", "error", err)
	}
}

// handleDeleteBasket deletes a basket
func (s *Server) handleDeleteBasket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteBasket(id); err != nil {
		if errors.Is(err, ErrBasketNotFound) {
			corsError(w, "Basket not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting basket", "id", id, "error", err)
		corsError(w, "Error deleting basket", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListCategories returns the emission factor table
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Categories())
}
