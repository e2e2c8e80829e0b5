package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// UploadController stores item images on local disk.
type UploadController struct {
	Dir string
}

// NewUploadController creates a new UploadController rooted at dir.
func NewUploadController(dir string) *UploadController {
	return &UploadController{Dir: dir}
}

// UploadImage accepts a multipart "image" file and stores it under a
// generated name.
func (uc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(uc.Dir, os.ModePerm); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to create upload directory")
		return
	}

	// 10MB in-memory cap, matching the multipart parse limit.
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(handler.Filename))
	path := filepath.Join(uc.Dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to create file on server")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Image uploaded successfully",
		"filename": filename,
		"url":      "/" + filepath.ToSlash(path),
	})
}

// GetAllImages lists stored image filenames.
func (uc *UploadController) GetAllImages(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(uc.Dir)
	if os.IsNotExist(err) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"images": []string{}})
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch images")
		return
	}

	images := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			images = append(images, entry.Name())
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"images": images})
}

// DeleteImage removes one stored image by filename.
func (uc *UploadController) DeleteImage(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if filename == "" {
		writeMessage(w, http.StatusBadRequest, "No filename provided")
		return
	}
	// Reject path traversal.
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		writeMessage(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	err := os.Remove(filepath.Join(uc.Dir, filename))
	if os.IsNotExist(err) {
		writeMessage(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Delete failed")
		return
	}

	writeMessage(w, http.StatusOK, "Image deleted successfully")
}
