package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// PDFGenerator renders withdrawal compliance reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// ReportData contains everything shown in a farmer's withdrawal report
type ReportData struct {
	Farmer      model.Farmer
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time
	Overall     model.SafetyResult
	Animals     []model.AnimalSafety
	Treatments  []model.Treatment
	Alerts      []model.WithdrawalAlert
}

// Generate creates the PDF and returns its bytes
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	g.addTitle(pdf, tr, data)
	g.addOverallStatus(pdf, data.Overall)
	g.addAnimals(pdf, tr, data.Animals)
	g.addTreatments(pdf, tr, data.Treatments, tagsByAnimal(data.Animals))
	g.addAlerts(pdf, data.Alerts, tagsByAnimal(data.Animals), data.GeneratedAt)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("withdrawal report rendered",
		zap.String("farmer_id", data.Farmer.ID),
		zap.Int("animals", len(data.Animals)),
		zap.Int("treatments", len(data.Treatments)),
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, tr func(string) string, data *ReportData) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Withdrawal Compliance Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Farmer: %s (%s)", data.Farmer.Name, data.Farmer.ID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s to %s",
		data.PeriodStart.Format(dateLayout), data.PeriodEnd.Format(dateLayout)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s UTC", data.GeneratedAt.UTC().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *PDFGenerator) addOverallStatus(pdf *gofpdf.Fpdf, overall model.SafetyResult) {
	g.addSectionHeader(pdf, "Consumption Safety")

	pdf.SetFont("Arial", "B", 12)
	if overall.Status == model.SafetyStatusUnderWithdrawal {
		pdf.SetTextColor(180, 0, 0)
		line := "UNDER WITHDRAWAL"
		if overall.SafeAfter != nil {
			line += " - safe after " + overall.SafeAfter.UTC().Format("2006-01-02 15:04") + " UTC"
		}
		pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	} else {
		pdf.SetTextColor(0, 120, 0)
		pdf.CellFormat(0, 8, "SAFE", "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 10)
	pdf.Ln(5)
}

func (g *PDFGenerator) addAnimals(pdf *gofpdf.Fpdf, tr func(string) string, animals []model.AnimalSafety) {
	g.addSectionHeader(pdf, "Animals")

	if len(animals) == 0 {
		pdf.CellFormat(0, 8, "No animals registered.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	widths := []float64{35, 35, 35, 65}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Tag", "Species", "Breed", "Status"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, a := range animals {
		status := string(a.Safety.Status)
		if a.Safety.SafeAfter != nil {
			status += " until " + a.Safety.SafeAfter.UTC().Format(dateLayout)
		}
		pdf.CellFormat(widths[0], 6, tr(a.Animal.TagNumber), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(a.Animal.Species), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(a.Animal.Breed), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, status, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addTreatments(pdf *gofpdf.Fpdf, tr func(string) string, treatments []model.Treatment, tags map[string]string) {
	g.addSectionHeader(pdf, "Treatments")

	if len(treatments) == 0 {
		pdf.CellFormat(0, 8, "No treatments recorded during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, t := range treatments {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s - animal %s (%s)",
			t.CreatedAt.UTC().Format(dateLayout), tags[t.AnimalID], t.Status)), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 5, tr("  Symptoms: "+strings.Join(t.Symptoms, ", ")), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr("  Diagnosis: "+t.Diagnosis), "", 1, "L", false, 0, "")
		for _, m := range t.Medicines {
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("  - %s %s, %d day(s), withdrawal %d day(s)",
				m.Name, m.Dosage, m.DurationDays, m.WithdrawalPeriodDays)), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
	pdf.Ln(3)
}

func (g *PDFGenerator) addAlerts(pdf *gofpdf.Fpdf, alerts []model.WithdrawalAlert, tags map[string]string, at time.Time) {
	g.addSectionHeader(pdf, "Withdrawal Alerts")

	if len(alerts) == 0 {
		pdf.CellFormat(0, 8, "No withdrawal alerts.", "", 1, "L", false, 0, "")
		return
	}

	for _, a := range alerts {
		state := "expired"
		if a.SafeFrom.After(at) {
			state = "active"
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("Animal %s: %d day(s), safe from %s UTC (%s)",
			tags[a.AnimalID], a.WithdrawalDays, a.SafeFrom.UTC().Format("2006-01-02 15:04"), state), "", 1, "L", false, 0, "")
	}
}

func tagsByAnimal(animals []model.AnimalSafety) map[string]string {
	tags := make(map[string]string, len(animals))
	for _, a := range animals {
		tags[a.Animal.ID] = a.Animal.TagNumber
	}
	return tags
}
