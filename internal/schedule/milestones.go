package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Milestone is a named checkpoint within a project phase, optionally
// linked to a client-facing progress payment.
type Milestone struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	TargetDate     time.Time `json:"target_date"`
	Status         string    `json:"status"`
	PaymentLinked  bool      `json:"payment_linked"`
	PaymentAmount  float64   `json:"payment_amount,omitempty"`
	ClientApproval bool      `json:"client_approval_required"`
	Dependencies   []string  `json:"dependencies"`
}

const MilestoneStatusUpcoming = "upcoming"

type milestoneDef struct {
	Name           string
	Description    string
	ClientApproval bool
}

// phaseMilestones maps a project phase to its canned milestone
// sequence, following the PAM stages the firm runs projects through.
var phaseMilestones = map[string][]milestoneDef{
	"pre_design": {
		{Name: "Client brief signed off", Description: "Agreed scope, budget and programme recorded", ClientApproval: true},
		{Name: "Site reconnaissance completed", Description: "Site visit, survey and utilities check done"},
		{Name: "Feasibility report issued", Description: "Planning constraints and massing options documented"},
	},
	"concept": {
		{Name: "Concept design presented", Description: "Massing, layout and material direction shown to client"},
		{Name: "Concept approved by client", Description: "Written client sign-off on the concept package", ClientApproval: true},
		{Name: "Concept cost plan issued", Description: "QS order-of-magnitude estimate circulated"},
	},
	"schematic": {
		{Name: "Schematic drawings issued", Description: "Plans, sections and elevations at schematic level"},
		{Name: "Authority pre-consultation held", Description: "Early engagement with local authority on submissions"},
		{Name: "Schematic design approved", Description: "Client sign-off to proceed to design development", ClientApproval: true},
	},
	"design_development": {
		{Name: "Developed design coordinated", Description: "Architecture, C&S and M&E models reconciled"},
		{Name: "Specification outline issued", Description: "Key materials and systems selected"},
		{Name: "Authority submission lodged", Description: "Development order / building plan submitted"},
		{Name: "Developed design approved", Description: "Client sign-off on the developed design", ClientApproval: true},
	},
	"documentation": {
		{Name: "Construction drawings complete", Description: "Full working drawing set ready for tender"},
		{Name: "Specifications complete", Description: "Trade specifications and schedules finalised"},
		{Name: "Bills of quantities issued", Description: "QS tender documentation completed"},
	},
	"tender": {
		{Name: "Tender documents issued", Description: "Tender package released to shortlisted contractors"},
		{Name: "Tender interviews held", Description: "Clarifications and contractor interviews completed"},
		{Name: "Tender report issued", Description: "Evaluation and recommendation delivered to client"},
		{Name: "Letter of award executed", Description: "Contract awarded under PAM conditions", ClientApproval: true},
	},
	"construction": {
		{Name: "Site possession granted", Description: "Contractor takes possession of the site"},
		{Name: "Structure topped out", Description: "Main structural frame completed"},
		{Name: "Architectural works complete", Description: "Finishes, doors, windows and fittings installed"},
		{Name: "Testing and commissioning done", Description: "M&E systems tested and commissioned"},
		{Name: "Practical completion certified", Description: "CPC issued under the PAM contract", ClientApproval: true},
	},
	"post_completion": {
		{Name: "Defects inspection completed", Description: "Defects liability period inspection carried out"},
		{Name: "Final account agreed", Description: "Final account settled with the contractor"},
		{Name: "Making good defects certified", Description: "CMGD issued, closing the contract", ClientApproval: true},
	},
}

// GenerateMilestones produces the canned milestone checklist for a
// project phase. Milestone i is dated 30*(i+1) days from now, depends
// only on milestone i-1, and is payment-linked when i is divisible by
// three. An unknown phase yields an empty list, not an error.
func GenerateMilestones(projectID, phase string) []Milestone {
	defs, ok := phaseMilestones[phase]
	if !ok {
		return []Milestone{}
	}

	now := time.Now().UTC()
	milestones := make([]Milestone, 0, len(defs))
	for i, def := range defs {
		m := Milestone{
			ID:             uuid.NewString(),
			ProjectID:      projectID,
			Name:           def.Name,
			Description:    def.Description,
			TargetDate:     now.AddDate(0, 0, 30*(i+1)),
			Status:         MilestoneStatusUpcoming,
			PaymentLinked:  i%3 == 0,
			ClientApproval: def.ClientApproval,
			Dependencies:   []string{},
		}
		if i > 0 {
			m.Dependencies = []string{milestones[i-1].ID}
		}
		milestones = append(milestones, m)
	}
	return milestones
}

// MilestonePhases lists the known phases in project order.
func MilestonePhases() []string {
	return []string{
		"pre_design", "concept", "schematic", "design_development",
		"documentation", "tender", "construction", "post_completion",
	}
}
