// Package api provides the REST API server for xf2leadsheet
package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/xf2leadsheet/pkg/leadsheet"
	"github.com/james-see/xf2leadsheet/pkg/midifile"
	"github.com/james-see/xf2leadsheet/pkg/xf"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title XF2LeadSheet API
// @version 1.0
// @description API for generating MusicXML lead sheets from Yamaha XF MIDI files
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/leadsheet", handleLeadSheet)
		v1.POST("/chords", handleChords)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "xf2leadsheet",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the supported input and output file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"inputs":  []string{"midi"},
		"outputs": []string{"musicxml"},
	})
}

// handleLeadSheet godoc
// @Summary Generate a lead sheet
// @Description Upload an XF chord MIDI file and a melody MIDI file, receive a MusicXML lead sheet
// @Tags leadsheet
// @Accept multipart/form-data
// @Produce application/vnd.recordare.musicxml+xml
// @Param chord formData file true "XF-formatted MIDI file containing the chord data"
// @Param melody formData file true "MIDI file containing the cleaned-up melody"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/leadsheet [post]
func handleLeadSheet(c *gin.Context) {
	chordData, _, ok := readUpload(c, "chord")
	if !ok {
		return
	}
	melodyData, melodyName, ok := readUpload(c, "melody")
	if !ok {
		return
	}

	chordFile, err := midifile.Parse(chordData)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("chord file: %v", err)})
		return
	}
	melodyFile, err := midifile.Parse(melodyData)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("melody file: %v", err)})
		return
	}

	chords := xf.Decode(chordFile.SysExMessages())
	timeline, err := leadsheet.Assemble(chords, melodyFile)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := timeline.WriteMusicXML(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	outputName := outputFilename(melodyName)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, "application/vnd.recordare.musicxml+xml", buf.Bytes())
}

// handleChords godoc
// @Summary List XF chords in a MIDI file
// @Description Upload an XF chord MIDI file, receive its decoded chord list as JSON
// @Tags leadsheet
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XF-formatted MIDI file"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/chords [post]
func handleChords(c *gin.Context) {
	data, _, ok := readUpload(c, "file")
	if !ok {
		return
	}

	f, err := midifile.Parse(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	chords := xf.Decode(f.SysExMessages())
	out := make([]gin.H, 0, len(chords))
	for _, chord := range chords {
		out = append(out, gin.H{
			"tick":    chord.Tick,
			"root":    chord.Root.String(),
			"quality": string(chord.Quality),
			"symbol":  chord.Symbol(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"chords": out, "count": len(out)})
}

func readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("missing %q upload", field)})
		return nil, "", false
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to read %q upload", field)})
		return nil, "", false
	}
	return data, header.Filename, true
}

func outputFilename(melodyName string) string {
	name := strings.TrimSuffix(melodyName, ".midi")
	name = strings.TrimSuffix(name, ".mid")
	if name == "" {
		name = "lead_sheet"
	}
	return name + ".musicxml"
}
