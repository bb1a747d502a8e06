package promostandards

import (
	"encoding/xml"
	"strings"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/normalize"
)

// Request envelopes. PromoStandards puts the account id and password inside
// the operation element rather than in a header.

type soapEnvelope struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	SoapNS    string   `xml:"xmlns:soapenv,attr"`
	ServiceNS string   `xml:"xmlns:ns,attr"`
	Body      soapBody
}

type soapBody struct {
	XMLName xml.Name `xml:"soapenv:Body"`
	Payload interface{}
}

// Each PromoStandards service carries its own namespace
const (
	productDataNS = "http://www.promostandards.org/WSDL/ProductDataService/2.0.0/"
	inventoryNS   = "http://www.promostandards.org/WSDL/Inventory/2.0.0/"
)

func envelopeFor(serviceNS string, request interface{}) soapEnvelope {
	return soapEnvelope{
		SoapNS:    "http://schemas.xmlsoap.org/soap/envelope/",
		ServiceNS: serviceNS,
		Body:      soapBody{Payload: request},
	}
}

type getProductRequest struct {
	XMLName              xml.Name `xml:"ns:GetProductRequest"`
	WsVersion            string   `xml:"ns:wsVersion"`
	ID                   string   `xml:"ns:id"`
	Password             string   `xml:"ns:password"`
	LocalizationCountry  string   `xml:"ns:localizationCountry"`
	LocalizationLanguage string   `xml:"ns:localizationLanguage"`
	ProductID            string   `xml:"ns:productId"`
}

type getInventoryRequest struct {
	XMLName   xml.Name        `xml:"ns:GetInventoryLevelsRequest"`
	WsVersion string          `xml:"ns:wsVersion"`
	ID        string          `xml:"ns:id"`
	Password  string          `xml:"ns:password"`
	ProductID string          `xml:"ns:productId"`
	Filter    inventoryFilter `xml:"ns:Filter"`
}

type inventoryFilter struct {
	PartIDs    []string `xml:"ns:partIdArray>ns:partId,omitempty"`
	Colors     []string `xml:"ns:PartColorArray>ns:partColor,omitempty"`
	Sizes      []string `xml:"ns:LabelSizeArray>ns:labelSize,omitempty"`
	Warehouses []string `xml:"ns:InventoryLocationArray>ns:inventoryLocationId,omitempty"`
}

// Response shapes. Tags match local names only so any supplier namespace
// prefix decodes. Repeated elements accumulate into slices, so a payload
// with one part and a payload with many parts decode through the same
// structs.

type soapFault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

type productResponseEnvelope struct {
	XMLName xml.Name
	Fault   *soapFault   `xml:"Body>Fault"`
	Product *wireProduct `xml:"Body>GetProductResponse>Product"`
}

type wireProduct struct {
	ProductID       string             `xml:"productId"`
	ProductName     string             `xml:"productName"`
	ProductBrand    string             `xml:"productBrand"`
	PrimaryColor    string             `xml:"primaryColor"`
	Descriptions    []string           `xml:"description"`
	MarketingPoints []marketingPoint   `xml:"ProductMarketingPointArray>ProductMarketingPoint"`
	Parts           []wirePart         `xml:"ProductPartArray>ProductPart"`
	Keywords        []productKeyword   `xml:"ProductKeywordArray>ProductKeyword"`
	Categories      []productCategory  `xml:"ProductCategoryArray>ProductCategory"`
	PriceGroups     []productPriceInfo `xml:"ProductPriceGroupArray>ProductPriceGroup"`
}

type marketingPoint struct {
	Type    string `xml:"pointType"`
	Copy    string `xml:"pointCopy"`
}

type productKeyword struct {
	Keyword string `xml:"keyword"`
}

type productCategory struct {
	Category    string `xml:"category"`
	SubCategory string `xml:"subCategory"`
}

type productPriceInfo struct {
	GroupName string `xml:"groupName"`
}

type wirePart struct {
	PartID      string      `xml:"partId"`
	Gtin        string      `xml:"gtin"`
	IsPrimary   bool        `xml:"primary"`
	Colors      []wireColor `xml:"ColorArray>Color"`
	ApparelSize *wireSize   `xml:"ApparelSize"`
	Images      []wireImage `xml:"ProductPartImageArray>ProductPartImage"`
}

type wireColor struct {
	ColorName string `xml:"colorName"`
	Hex       string `xml:"hex"`
	SwatchURL string `xml:"swatchUrl"`
}

type wireSize struct {
	ApparelStyle string `xml:"apparelStyle"`
	LabelSize    string `xml:"labelSize"`
}

type wireImage struct {
	URL string `xml:"productPartImageURL"`
}

type inventoryResponseEnvelope struct {
	XMLName   xml.Name
	Fault     *soapFault     `xml:"Body>Fault"`
	Inventory *wireInventory `xml:"Body>GetInventoryLevelsResponse>Inventory"`
}

type wireInventory struct {
	ProductID string              `xml:"productId"`
	Parts     []wirePartInventory `xml:"PartInventoryArray>PartInventory"`
}

type wirePartInventory struct {
	PartID            string          `xml:"partId"`
	PartColor         string          `xml:"partColor"`
	LabelSize         string          `xml:"labelSize"`
	QuantityAvailable wireQuantity    `xml:"quantityAvailable>Quantity"`
	Locations         []wireLocation  `xml:"InventoryLocationArray>InventoryLocation"`
}

type wireQuantity struct {
	Value int `xml:"value"`
}

type wireLocation struct {
	LocationID string       `xml:"inventoryLocationId"`
	Quantity   wireQuantity `xml:"inventoryLocationQuantity>Quantity"`
}

func decodeProductResponse(body []byte) (*wireProduct, error) {
	var envelope productResponseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, &clients.ParseError{Reason: err.Error()}
	}
	if envelope.Fault != nil {
		return nil, &clients.SOAPFaultError{Code: envelope.Fault.Code, Message: envelope.Fault.Reason}
	}
	if envelope.Product == nil {
		return nil, &clients.ParseError{Reason: "response contains no Product element"}
	}
	return envelope.Product, nil
}

func decodeInventoryResponse(body []byte) (*wireInventory, error) {
	var envelope inventoryResponseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, &clients.ParseError{Reason: err.Error()}
	}
	if envelope.Fault != nil {
		return nil, &clients.SOAPFaultError{Code: envelope.Fault.Code, Message: envelope.Fault.Reason}
	}
	if envelope.Inventory == nil {
		return nil, &clients.ParseError{Reason: "response contains no Inventory element"}
	}
	return envelope.Inventory, nil
}

// convertProduct assembles the canonical record from the wire product. Parts
// repeat per color and size; the accumulator methods deduplicate as the part
// list is walked.
func convertProduct(wire *wireProduct) (*clients.ProductRecord, error) {
	if strings.TrimSpace(wire.ProductID) == "" {
		return nil, &clients.ParseError{Reason: "product payload carries no productId"}
	}

	record := &clients.ProductRecord{
		SupplierPartID: strings.TrimSpace(wire.ProductID),
		Name:           strings.TrimSpace(wire.ProductName),
		Brand:          strings.TrimSpace(wire.ProductBrand),
	}

	for _, d := range wire.Descriptions {
		if d = strings.TrimSpace(d); d != "" {
			record.Description = append(record.Description, d)
		}
	}
	for _, p := range wire.MarketingPoints {
		if copyText := strings.TrimSpace(p.Copy); copyText != "" {
			record.Description = append(record.Description, copyText)
		}
	}

	if wire.PrimaryColor != "" {
		record.DefaultColor = normalize.SanitizeCode(wire.PrimaryColor, clients.DefaultColorCode)
	}

	for _, part := range wire.Parts {
		colorCode := clients.DefaultColorCode
		if len(part.Colors) > 0 {
			color := part.Colors[0]
			colorway := clients.NewColorway(color.ColorName)
			colorway.SwatchURL = color.SwatchURL
			record.AddColorway(colorway)
			colorCode = colorway.Code
		}

		sizeCode := clients.DefaultSizeCode
		if part.ApparelSize != nil && part.ApparelSize.LabelSize != "" {
			size := clients.NewSize(part.ApparelSize.LabelSize)
			record.AddSize(size)
			sizeCode = size.Code
		}

		record.AddSku(colorCode, sizeCode, strings.TrimSpace(part.Gtin))

		for _, img := range part.Images {
			record.AddMedia(colorCode, img.URL)
		}

		if part.IsPrimary && record.DefaultColor == "" {
			record.DefaultColor = colorCode
		}
	}

	for _, k := range wire.Keywords {
		record.AddKeywords(k.Keyword)
	}
	for _, cat := range wire.Categories {
		if cat.Category != "" {
			record.SetAttribute("category", cat.Category)
		}
		if cat.SubCategory != "" {
			record.SetAttribute("subCategory", cat.SubCategory)
		}
	}
	for _, pg := range wire.PriceGroups {
		if pg.GroupName != "" {
			record.SetAttribute("priceGroup", pg.GroupName)
		}
	}

	record.Finalize()
	return record, nil
}

// convertInventory flattens part inventory into canonical rows
func convertInventory(productID string, wire *wireInventory) []clients.InventoryRow {
	partID := strings.ToUpper(strings.TrimSpace(wire.ProductID))
	if partID == "" {
		partID = strings.ToUpper(strings.TrimSpace(productID))
	}

	rows := make([]clients.InventoryRow, 0, len(wire.Parts))
	for _, part := range wire.Parts {
		row := clients.InventoryRow{
			SupplierPartID: partID,
			SupplierSku:    strings.TrimSpace(part.PartID),
			ColorCode:      normalize.SanitizeCode(part.PartColor, clients.DefaultColorCode),
			SizeCode:       normalize.SanitizeCode(part.LabelSize, clients.DefaultSizeCode),
			TotalQty:       part.QuantityAvailable.Value,
		}
		for _, loc := range part.Locations {
			row.Warehouses = append(row.Warehouses, clients.WarehouseQty{
				WarehouseID: strings.TrimSpace(loc.LocationID),
				Quantity:    loc.Quantity.Value,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
