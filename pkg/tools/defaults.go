package tools

import (
	"github.com/pacifico/agora/pkg/auth"
	"github.com/pacifico/agora/pkg/store"
	"github.com/pacifico/agora/pkg/tier"
)

// Deps are the collaborators the default toolset needs. Provisioner may
// be nil when the auth backend is unconfigured; account tools then return
// a fixed error string.
type Deps struct {
	Provisioner auth.Provisioner
	Themes      *store.ThemeStore
	Maps        *store.MapStore
}

// NewDefaultRegistry registers the full administrative toolset. Which
// subset a session can actually invoke is decided by its tier policy, not
// here.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	r := NewRegistry()
	creator := &accountCreator{provisioner: deps.Provisioner}

	defs := []Definition{
		{
			Name:        tier.ToolSentimentAnalyzer,
			Description: "Analiza el sentimiento de textos políticos",
			Handler:     sentimentAnalyzerHandler(),
		},
		{
			Name:        tier.ToolCampaignAdvisor,
			Description: "Proporciona consejos estratégicos",
			Handler:     campaignAdvisorHandler(),
		},
		{
			Name:        tier.ToolCreateCandidate,
			Description: "Crea una nueva cuenta de tipo candidato. Requiere email y nombre.",
			Handler:     creator.handler("candidato"),
		},
		{
			Name:        tier.ToolCreateLeader,
			Description: "Crea una nueva cuenta de tipo líder. Requiere email y nombre.",
			Handler:     creator.handler("lider"),
		},
		{
			Name:        tier.ToolCreateVoter,
			Description: "Crea una nueva cuenta de tipo votante. Requiere email y nombre.",
			Handler:     creator.handler("votante"),
		},
		{
			Name:        tier.ToolCreatePublicidad,
			Description: "Crea una nueva cuenta de tipo publicidad. Requiere email y nombre.",
			Handler:     creator.handler("publicidad"),
		},
		{
			Name:        tier.ToolCreateMaster,
			Description: "Crea una nueva cuenta de tipo master. Requiere email y nombre.",
			Handler:     creator.handler("master"),
		},
		{
			Name:        tier.ToolUpdateColorPalette,
			Description: "Actualiza la paleta de colores de la interfaz. Requiere un JSON con 'primary' y 'accent'.",
			Handler:     updateColorPaletteHandler(deps.Themes),
		},
		{
			Name:        tier.ToolAddDataToNetwork,
			Description: "Añade una base de datos de usuarios (votantes, etc.) a la red.",
			Handler:     addDataToNetworkHandler(),
		},
		{
			Name:        tier.ToolCreateAdCopy,
			Description: "Genera un texto publicitario (copy) para un evento o tema.",
			Handler:     createAdCopyHandler(),
		},
		{
			Name:        tier.ToolViewCampaignStatus,
			Description: "Muestra un resumen del estado y rendimiento de la campaña.",
			Handler:     viewCampaignStatusHandler(),
		},
		{
			Name:        tier.ToolViewTeamStructure,
			Description: "Muestra un resumen de la red de líderes y voluntarios.",
			Handler:     viewTeamStructureHandler(),
		},
		{
			Name:        tier.ToolGetMapMarkers,
			Description: "Obtiene los marcadores geográficos relevantes para tu rol en el mapa.",
			Handler:     ownMapMarkersHandler(deps.Maps),
		},
		{
			Name:        tier.ToolGetAllMapMarkers,
			Description: "Obtiene los marcadores de mapa para un rol específico. La entrada es el nombre del rol.",
			Handler:     mapMarkersByRoleHandler(deps.Maps),
		},
		{
			Name:        tier.ToolConfigureWhatsApp,
			Description: "Configura la automatización de WhatsApp para tu red.",
			Handler:     configureWhatsAppHandler(),
		},
		{
			Name:        tier.ToolRunSystemAudit,
			Description: "Ejecuta una auditoría técnica completa del sistema y devuelve el resumen.",
			Handler:     runSystemAuditHandler(),
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
