package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Canned analysis and advisory tools. The reference system stubs these
// with fixed Spanish responses; the text is part of the user-visible
// contract and is kept verbatim.

func sentimentAnalyzerHandler() Handler {
	return func(ctx context.Context, arg string) string {
		return "Sentimiento: neutral."
	}
}

func campaignAdvisorHandler() Handler {
	return func(ctx context.Context, arg string) string {
		return "Consejo: enfócate en redes sociales."
	}
}

func createAdCopyHandler() Handler {
	return func(ctx context.Context, arg string) string {
		log.Debug().Str("topic", arg).Msg("Generating ad copy")
		return fmt.Sprintf("¡No te lo pierdas! Únete a nosotros en nuestro próximo evento sobre %s. Juntos construiremos un futuro más seguro. #Campaña #Seguridad #Participa", arg)
	}
}

func viewCampaignStatusHandler() Handler {
	return func(ctx context.Context, arg string) string {
		return "Estado de la campaña: Positivo. El reconocimiento de nombre ha subido un 5% esta semana. El sentimiento en redes es mayormente favorable."
	}
}

func viewTeamStructureHandler() Handler {
	return func(ctx context.Context, arg string) string {
		return "Tu red actual consta de 5 líderes de zona y 32 voluntarios activos. El área con mayor crecimiento es la Comuna 5."
	}
}

func runSystemAuditHandler() Handler {
	return func(ctx context.Context, arg string) string {
		log.Info().Str("query", arg).Msg("Running system audit")
		return "Auditoría completada. Estado del sistema: Óptimo. Todos los servicios en línea."
	}
}
