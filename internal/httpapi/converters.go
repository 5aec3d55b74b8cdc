package httpapi

import (
	"github.com/Belphemur/PropertyListings/internal/models"
)

const statusSuccess = "success"

// propertyPage is the data handed to the listing template
type propertyPage struct {
	Properties      []models.PropertyRecord
	TotalProperties int
}

// convertPropertiesToRecords converts properties to their response shape, keeping order
func convertPropertiesToRecords(props []models.Property) []models.PropertyRecord {
	records := make([]models.PropertyRecord, len(props))
	for i, p := range props {
		records[i] = p.ToRecord()
	}
	return records
}

// convertPropertiesToListResponse builds the JSON listing body
func convertPropertiesToListResponse(props []models.Property) models.PropertyListResponse {
	records := convertPropertiesToRecords(props)
	return models.PropertyListResponse{
		Data:   records,
		Count:  len(records),
		Status: statusSuccess,
	}
}

// convertPropertiesToPage builds the HTML listing data
func convertPropertiesToPage(props []models.Property) propertyPage {
	records := convertPropertiesToRecords(props)
	return propertyPage{
		Properties:      records,
		TotalProperties: len(records),
	}
}
