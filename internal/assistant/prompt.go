package assistant

import (
	"fmt"
	"strings"

	"github.com/jelajah/jelajah-api/internal/types"
)

// buildPlanPrompt renders the travel planning prompt. The expected JSON
// schema is embedded literally: providers are free-text generators, and a
// worked example raises the odds the response parser accepts their output.
func buildPlanPrompt(req *types.AssistantRequest) string {
	destination := req.Destination
	duration := req.DurationDays
	if duration == 0 {
		duration = 3
	}
	budget := req.Budget
	if budget == "" {
		budget = types.BudgetMedium
	}

	preferences := "Tidak ada"
	if len(req.Preferences) > 0 {
		preferences = strings.Join(req.Preferences, ", ")
	}

	return strings.TrimSpace(fmt.Sprintf(`
Buatkan rencana perjalanan wisata %d hari ke %s dengan budget %s.

Preferensi khusus: %s

Format respons dalam JSON:
{
    "title": "Judul perjalanan",
    "destination": "%s",
    "duration_days": %d,
    "daily_routes": [
        {
            "day": 1,
            "date": "2024-01-01",
            "activities": [
                {
                    "time": "09:00",
                    "activity": "Nama aktivitas",
                    "location": "Lokasi",
                    "description": "Deskripsi singkat",
                    "estimated_cost": 100000
                }
            ],
            "estimated_cost": 300000
        }
    ],
    "cost_estimate": {
        "accommodation": 500000,
        "food": 300000,
        "transport": 200000,
        "activities": 400000,
        "total": 1400000,
        "currency": "IDR"
    },
    "confidence": 0.8
}

Berikan rekomendasi yang realistis dan sesuai dengan budget serta preferensi yang diminta.`,
		duration, destination, budget, preferences, destination, duration))
}

// buildChatPrompt renders the conversational prompt. Previous conversation
// context, when present, is prepended as a short annotation so providers
// can carry the topic over.
func buildChatPrompt(req *types.AssistantRequest) string {
	var b strings.Builder

	b.WriteString("Kamu adalah asisten perjalanan wisata Indonesia yang ramah dan membantu.\n")
	if topic, ok := req.Context["last_topic"]; ok && topic != "" {
		fmt.Fprintf(&b, "Konteks percakapan sebelumnya: %s\n", topic)
	}
	fmt.Fprintf(&b, `
Pertanyaan pengguna: %s

Format respons dalam JSON:
{
    "answer": "Jawaban lengkap dan membantu",
    "confidence": 0.8,
    "suggestions": ["Saran pertanyaan lanjutan 1", "Saran pertanyaan lanjutan 2"]
}

Jawab dalam Bahasa Indonesia dengan informasi wisata yang akurat.`, req.Message)

	return strings.TrimSpace(b.String())
}

// buildVisionPrompt renders the landmark identification prompt for
// multimodal providers.
func buildVisionPrompt(_ *types.AssistantRequest) string {
	return strings.TrimSpace(`
Analisis gambar ini dan identifikasi landmark atau tempat wisata yang terlihat.
Berikan respons dalam format JSON:
{
    "landmarks": [
        {
            "name": "Nama landmark",
            "description": "Deskripsi singkat",
            "location": "Lokasi",
            "category": "Kategori",
            "confidence": 0.8
        }
    ],
    "summary": "Ringkasan analisis gambar"
}`)
}
