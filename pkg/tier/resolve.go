package tier

// Tool names exposed through tier policies. The registry in pkg/tools
// registers handlers under the same names.
const (
	ToolSentimentAnalyzer  = "sentiment_analyzer"
	ToolCampaignAdvisor    = "campaign_advisor"
	ToolCreateCandidate    = "create_candidate_account"
	ToolCreateLeader       = "create_leader_account"
	ToolCreateVoter        = "create_voter_account"
	ToolCreatePublicidad   = "create_publicidad_account"
	ToolCreateMaster       = "create_master_account"
	ToolUpdateColorPalette = "update_color_palette"
	ToolAddDataToNetwork   = "add_data_to_network"
	ToolCreateAdCopy       = "create_ad_copy"
	ToolViewCampaignStatus = "view_campaign_status"
	ToolViewTeamStructure  = "view_team_structure"
	ToolGetMapMarkers      = "get_map_markers"
	ToolGetAllMapMarkers   = "get_all_map_markers"
	ToolConfigureWhatsApp  = "configure_whatsapp_integration"
	ToolRunSystemAudit     = "run_system_audit"
)

var (
	baselineTools = []string{ToolSentimentAnalyzer, ToolCampaignAdvisor}

	masterTools = []string{
		ToolCreateCandidate,
		ToolCreateLeader,
		ToolCreateVoter,
		ToolCreatePublicidad,
		ToolUpdateColorPalette,
		ToolAddDataToNetwork,
	}

	adTools = []string{ToolCreateAdCopy}

	candidateTools = []string{ToolViewCampaignStatus, ToolGetMapMarkers}

	leaderTools = []string{
		ToolViewTeamStructure,
		ToolGetMapMarkers,
		ToolConfigureWhatsApp,
	}

	developerTools = []string{
		ToolCreateMaster,
		ToolRunSystemAudit,
		ToolGetAllMapMarkers,
	}
)

// Resolve maps a tier label to its configuration. It is total: unknown
// labels resolve to the free tier.
func Resolve(label string) Config {
	t := Tier(label)
	if !t.Valid() {
		t = TierFree
	}

	cfg := Config{
		Tier:          t,
		DailyRequests: Bounded(100),
		MonthlyTokens: Bounded(10000),
		MaxWorkflows:  Bounded(3),
		MemoryWindow:  10,
		Welcome:       welcomeMessage(t),
		Tools:         toolSubset(t),
	}

	switch t {
	case TierPremium:
		cfg.DailyRequests = Bounded(10000)
		cfg.MonthlyTokens = Bounded(1000000)
		cfg.MaxWorkflows = Bounded(50)
		cfg.RealTimeMonitoring = true
		cfg.MemoryWindow = 50
		cfg.RequiresRemote = true
	case TierDeveloper:
		cfg.DailyRequests = Unbounded()
		cfg.MonthlyTokens = Unbounded()
		cfg.MaxWorkflows = Unbounded()
		cfg.RealTimeMonitoring = true
		cfg.MemoryWindow = 50
		cfg.RequiresRemote = true
	case TierFree:
		// Defaults above.
	default:
		// Role tiers share the free limits but keep the larger window.
		cfg.MemoryWindow = 50
	}

	return cfg
}

func toolSubset(t Tier) []string {
	tools := append([]string{}, baselineTools...)

	switch t {
	case TierMaster:
		tools = append(tools, masterTools...)
	case TierPublicidad:
		tools = append(tools, adTools...)
	case TierCandidato:
		tools = append(tools, candidateTools...)
	case TierLider:
		tools = append(tools, leaderTools...)
	case TierDeveloper:
		tools = append(tools, masterTools...)
		tools = append(tools, adTools...)
		tools = append(tools, candidateTools...)
		tools = append(tools, leaderTools...)
		tools = append(tools, developerTools...)
	}

	return dedupe(tools)
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func welcomeMessage(t Tier) string {
	switch t {
	case TierDeveloper:
		return "Acceso de Desarrollador concedido. Herramientas administrativas activadas. Bienvenido, Root."
	case TierMaster:
		return "Bienvenido, Master. Tus herramientas de gestión de equipo están listas."
	case TierCandidato:
		return "Bienvenido, Candidato. Tu panel de control de campaña está activo. ¡Vamos a ganar!"
	case TierLider:
		return "Bienvenido, Líder. Tus herramientas de gestión de estructura están listas para movilizar."
	case TierPublicidad:
		return "Bienvenido, estratega. Tus herramientas de publicidad y difusión están activas."
	case TierPremium:
		return "¡Bienvenido al Comando Central Premium! Tu cerebro Agora está activado con poderes élite."
	default:
		return "¡Bienvenido al Comando Central! Tu cerebro básico está activo."
	}
}
