package handlers

import "fmt"

// mockResponse produces the canned assistant reply used when no
// serving endpoint can be reached. The text is keyed on the domain so
// local development still exercises domain switching in the client.
func mockResponse(message, endpointName, domainName, siteName string, historyLen int) string {
	siteInfo := ""
	if siteName != "All Sites" {
		siteInfo = fmt.Sprintf(" (focused on %s)", siteName)
	}
	contextInfo := ""
	switch {
	case historyLen > 0:
		contextInfo = fmt.Sprintf("\n\n*I have access to %d previous messages in our conversation for context.%s*", historyLen, siteInfo)
	case siteInfo != "":
		contextInfo = fmt.Sprintf("\n\n*%s*", siteInfo[1:])
	}

	switch domainName {
	case "Mining Operations":
		return fmt.Sprintf("As your Mining Operations assistant, I can help analyze production data and operational metrics.\n\nRegarding %q:\n\nIn a production environment, I would connect to real-time operational data from your mining sites, including equipment telemetry, shift reports, and safety metrics. I can help optimize production schedules, identify bottlenecks, and track KPIs.%s", message, contextInfo)
	case "Geological Services":
		return fmt.Sprintf("As your Geological Services assistant, I specialize in geological data analysis.\n\nRegarding %q:\n\nI can assist with ore body modeling, drill hole analysis, grade estimation, and geological mapping. In production, I would have access to your geological databases and exploration data to provide data-driven insights.%s", message, contextInfo)
	case "Mineral Processing":
		return fmt.Sprintf("As your Mineral Processing specialist, I focus on plant optimization.\n\nRegarding %q:\n\nI can help analyze throughput rates, recovery efficiencies, and processing parameters. In production, I would integrate with plant control systems to provide real-time optimization recommendations.%s", message, contextInfo)
	case "Sustainability & ESG":
		return fmt.Sprintf("As your Sustainability & ESG advisor, I help with environmental and social governance.\n\nRegarding %q:\n\nI can assist with emissions tracking, water usage analysis, community impact assessments, and ESG reporting. In production, I would connect to your sustainability monitoring systems.%s", message, contextInfo)
	case "Supply Chain":
		return fmt.Sprintf("As your Supply Chain analyst, I optimize logistics and procurement.\n\nRegarding %q:\n\nI can help with inventory optimization, vendor performance analysis, logistics routing, and procurement analytics. In production, I would integrate with your ERP and supply chain systems.%s", message, contextInfo)
	case "Finance & Analytics":
		return fmt.Sprintf("As your Finance & Analytics assistant, I focus on financial performance.\n\nRegarding %q:\n\nI can help with cost analysis, budget forecasting, capital allocation, and financial KPIs. In production, I would connect to your financial systems for real-time insights.%s", message, contextInfo)
	}
	return fmt.Sprintf("Thank you for your question! Using %s, I'm here to help with your %s queries.\n\nYou asked: %q\n\nIn production, this would connect to your Databricks serving endpoint with domain-specific context and knowledge. The response would be tailored to your specific business area within Anglo American.%s", endpointName, domainName, message, contextInfo)
}
