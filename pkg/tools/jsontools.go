package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/pacifico/agora/pkg/store"
)

// Argument schemas for the JSON-taking tools. Validation happens before
// any side effect so a malformed argument can never leave partial state.
var (
	themeSchema = mustSchema(`{
		"type": "object",
		"required": ["primary", "accent"],
		"properties": {
			"primary": {"type": "string", "minLength": 1},
			"accent":  {"type": "string", "minLength": 1}
		}
	}`)

	networkDataSchema = mustSchema(`{
		"type": "object",
		"required": ["type", "count"],
		"properties": {
			"type":   {"type": "string", "minLength": 1},
			"count":  {"type": "integer", "minimum": 0},
			"source": {"type": "string"}
		}
	}`)

	whatsappSchema = mustSchema(`{
		"type": "object",
		"required": ["phone_number"],
		"properties": {
			"phone_number":    {"type": "string", "minLength": 1},
			"welcome_message": {"type": "string"}
		}
	}`)
)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid tool schema: %v", err))
	}
	return schema
}

// validateJSON checks arg against schema. It distinguishes malformed JSON
// from schema violations so the user sees the right Spanish error.
func validateJSON(schema *gojsonschema.Schema, arg string) (string, bool) {
	var probe interface{}
	if err := json.Unmarshal([]byte(arg), &probe); err != nil {
		return "Error: El formato del string de entrada no es un JSON válido.", false
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(arg))
	if err != nil {
		return "Error: El formato del string de entrada no es un JSON válido.", false
	}
	if !result.Valid() {
		return "", false
	}
	return "", true
}

func updateColorPaletteHandler(themes *store.ThemeStore) Handler {
	return func(ctx context.Context, arg string) string {
		if msg, ok := validateJSON(themeSchema, arg); !ok {
			if msg != "" {
				return msg
			}
			return "Error: El JSON debe contener las claves 'primary' y 'accent'."
		}

		var theme store.Theme
		if err := json.Unmarshal([]byte(arg), &theme); err != nil {
			return "Error: El formato del string de entrada no es un JSON válido."
		}
		if err := themes.Set(theme); err != nil {
			return fmt.Sprintf("Error inesperado al guardar el tema: %v", err)
		}
		return "¡Perfecto! He actualizado la paleta de colores de la aplicación. Los cambios se aplicarán en la próxima recarga."
	}
}

func addDataToNetworkHandler() Handler {
	return func(ctx context.Context, arg string) string {
		if msg, ok := validateJSON(networkDataSchema, arg); !ok {
			if msg != "" {
				return msg
			}
			return "Error al procesar los datos: el JSON debe contener 'type' y 'count'."
		}

		var data struct {
			Type   string `json:"type"`
			Count  int    `json:"count"`
			Source string `json:"source"`
		}
		if err := json.Unmarshal([]byte(arg), &data); err != nil {
			return fmt.Sprintf("Error al procesar los datos: %v", err)
		}

		log.Info().
			Str("type", data.Type).
			Int("count", data.Count).
			Str("source", data.Source).
			Msg("Network data ingested")

		return fmt.Sprintf("He procesado %d nuevos registros de %s. La red ha sido actualizada.", data.Count, data.Type)
	}
}

func configureWhatsAppHandler() Handler {
	return func(ctx context.Context, arg string) string {
		if msg, ok := validateJSON(whatsappSchema, arg); !ok {
			if msg != "" {
				return msg
			}
			return "Error al configurar la integración: el JSON debe contener 'phone_number'."
		}

		var cfg struct {
			PhoneNumber string `json:"phone_number"`
		}
		if err := json.Unmarshal([]byte(arg), &cfg); err != nil {
			return fmt.Sprintf("Error al configurar la integración: %v", err)
		}

		log.Info().Str("phone", cfg.PhoneNumber).Msg("WhatsApp integration configured")
		return "¡Excelente! He configurado la integración de WhatsApp. El asistente ya está activo en ese número."
	}
}

// ownMapMarkersHandler serves the markers for the invoking session's own
// role. The argument is ignored so a session cannot read another role's
// markers.
func ownMapMarkersHandler(maps *store.MapStore) Handler {
	return func(ctx context.Context, arg string) string {
		return renderMarkers(maps, CallerRole(ctx))
	}
}

// mapMarkersByRoleHandler serves the markers for the role named in the
// argument. Unknown roles fall back to the default marker set.
func mapMarkersByRoleHandler(maps *store.MapStore) Handler {
	return func(ctx context.Context, arg string) string {
		return renderMarkers(maps, arg)
	}
}

func renderMarkers(maps *store.MapStore, role string) string {
	markers, err := maps.MarkersFor(role)
	if err != nil {
		out, _ := json.Marshal(map[string]string{"error": fmt.Sprintf("Error al leer los datos del mapa: %v", err)})
		return string(out)
	}

	out, err := json.Marshal(markers)
	if err != nil {
		return fmt.Sprintf("Error al leer los datos del mapa: %v", err)
	}
	return string(out)
}
