package store

import "github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"

// Fixed bootstrap data. Every backend seeds these at initialization;
// durable backends only when their tables are empty. A later remote
// refresh may replace the endpoint set but never the domains or sites.

func defaultDomains() []models.Domain {
	return []models.Domain{
		{ID: "generic", Name: "General Assistant", Description: "General-purpose AI assistant for Anglo American", SystemPrompt: "You are a helpful AI assistant for Anglo American, a global mining company. Provide accurate, professional responses.", Icon: "Bot"},
		{ID: "mining-ops", Name: "Mining Operations", Description: "Mining operations, production, and equipment management", SystemPrompt: "You are a mining operations specialist for Anglo American. Help with production optimization, equipment management, and operational efficiency.", Icon: "Pickaxe"},
		{ID: "geological", Name: "Geological Services", Description: "Geological analysis, exploration, and resource estimation", SystemPrompt: "You are a geological services expert for Anglo American. Assist with geological analysis, exploration planning, and resource estimation.", Icon: "Mountain"},
		{ID: "processing", Name: "Mineral Processing", Description: "Mineral processing and plant optimization", SystemPrompt: "You are a mineral processing specialist for Anglo American. Help optimize plant operations, throughput, and recovery rates.", Icon: "Factory"},
		{ID: "sustainability", Name: "Sustainability & ESG", Description: "Environmental, social, and governance initiatives", SystemPrompt: "You are a sustainability and ESG advisor for Anglo American. Assist with environmental compliance, social responsibility, and governance reporting.", Icon: "Leaf"},
		{ID: "supply-chain", Name: "Supply Chain", Description: "Supply chain, logistics, and procurement", SystemPrompt: "You are a supply chain specialist for Anglo American. Help with logistics optimization, procurement, and vendor management.", Icon: "Truck"},
		{ID: "finance", Name: "Finance & Analytics", Description: "Financial analysis and business analytics", SystemPrompt: "You are a finance and analytics specialist for Anglo American. Assist with financial analysis, budgeting, and business intelligence.", Icon: "BarChart3"},
	}
}

func defaultSites() []models.Site {
	return []models.Site{
		{ID: "all-sites", Name: "All Sites", Location: "Global", Type: "Corporate"},
		{ID: "kumba", Name: "Kumba Iron Ore", Location: "South Africa", Type: "Iron Ore"},
		{ID: "sishen", Name: "Sishen Mine", Location: "Northern Cape, South Africa", Type: "Iron Ore"},
		{ID: "mogalakwena", Name: "Mogalakwena", Location: "Limpopo, South Africa", Type: "PGMs"},
		{ID: "unki", Name: "Unki Mine", Location: "Zimbabwe", Type: "PGMs"},
		{ID: "amandelbult", Name: "Amandelbult", Location: "Limpopo, South Africa", Type: "PGMs"},
		{ID: "quellaveco", Name: "Quellaveco", Location: "Peru", Type: "Copper"},
		{ID: "minas-rio", Name: "Minas-Rio", Location: "Brazil", Type: "Iron Ore"},
		{ID: "los-bronces", Name: "Los Bronces", Location: "Chile", Type: "Copper"},
		{ID: "moranbah", Name: "Moranbah", Location: "Queensland, Australia", Type: "Metallurgical Coal"},
		{ID: "sakatti", Name: "Sakatti", Location: "Finland", Type: "Copper-Nickel"},
		{ID: "woodsmith", Name: "Woodsmith", Location: "UK", Type: "Polyhalite"},
	}
}

func defaultEndpoints() []models.Endpoint {
	return []models.Endpoint{
		{ID: "databricks-dbrx-instruct", Name: "DBRX Instruct", Description: "Databricks foundation model - fast and capable", Type: models.EndpointFoundation, IsDefault: true},
		{ID: "databricks-llama-3-70b", Name: "Llama 3 70B", Description: "Meta's Llama 3 70B model", Type: models.EndpointFoundation},
		{ID: "databricks-mixtral-8x7b", Name: "Mixtral 8x7B", Description: "Mistral AI mixture of experts", Type: models.EndpointFoundation},
	}
}
