package testutil

import (
	"bytes"

	"github.com/evea/evea_backend/models"
)

const TestPassword = "supersecret1"

// PDFBytes returns a payload sniffed as application/pdf
func PDFBytes(size int) []byte {
	return pad([]byte("%PDF-1.4\n"), size)
}

// PNGBytes returns a payload sniffed as image/png
func PNGBytes(size int) []byte {
	return pad([]byte("\x89PNG\r\n\x1a\n"), size)
}

// JPEGBytes returns a payload sniffed as image/jpeg
func JPEGBytes(size int) []byte {
	return pad([]byte("\xff\xd8\xff\xe0"), size)
}

func pad(header []byte, size int) []byte {
	if size < len(header) {
		size = len(header)
	}
	return append(header, bytes.Repeat([]byte{'x'}, size-len(header))...)
}

// Step1Request is a valid local sign-up for email
func Step1Request(email string) models.Step1Request {
	return models.Step1Request{
		BusinessInfo: models.BusinessInfo{
			BusinessName: "Lens & Light Studio",
			BusinessType: "proprietorship",
			OwnerName:    "Asha Rao",
			Email:        email,
			Phone:        "+91 98765 43210",
			Description:  "Candid wedding photography",
			Address: models.Address{
				Street:  "12 MG Road",
				City:    "Bengaluru",
				State:   "Karnataka",
				Pincode: "560001",
			},
			Categories: []models.VendorCategory{models.CategoryPhotography},
		},
		Credentials: models.Credentials{
			AuthMethod:      models.AuthMethodLocal,
			Password:        TestPassword,
			ConfirmPassword: TestPassword,
		},
	}
}

// Step2Submission carries every required document plus the optional GST certificate
func Step2Submission() models.Step2Submission {
	return models.Step2Submission{
		Documents: []models.DocumentUpload{
			{Type: models.DocBusinessRegistration, FileName: "registration.pdf", MimeType: "application/pdf", Data: PDFBytes(2048)},
			{Type: models.DocGSTCertificate, FileName: "gst.pdf", MimeType: "application/pdf", Data: PDFBytes(1024)},
			{Type: models.DocPANCard, FileName: "pan.png", MimeType: "image/png", Data: PNGBytes(1024)},
			{Type: models.DocBankStatement, FileName: "statement.pdf", MimeType: "application/pdf", Data: PDFBytes(4096)},
			{Type: models.DocIdentityProof, FileName: "aadhaar.jpg", MimeType: "image/jpeg", Data: JPEGBytes(1024)},
		},
		BankDetails: models.BankDetails{
			AccountHolderName: "Asha Rao",
			AccountNumber:     "123456789012",
			IFSCCode:          "hdfc0001234",
			BankName:          "HDFC Bank",
		},
		RegistrationNumbers: models.RegistrationNumbers{
			PANNumber: "abcde1234f",
		},
	}
}

// Step3Request lists one photography service
func Step3Request() models.Step3Request {
	return models.Step3Request{
		Services: []models.ServiceOffering{{
			Title:         "Wedding Photography",
			Category:      models.CategoryPhotography,
			Description:   "Full day coverage",
			EventTypes:    []models.EventType{models.EventWedding, models.EventEngagement},
			GuestCapacity: &models.GuestCapacity{Min: 50, Max: 500},
			Packages: []models.Package{
				{Name: "Gold", Price: 75000, Duration: "1 day", Inclusions: []string{"Album", "Drone shots"}},
			},
		}},
		RecommendationAnswers: &models.RecommendationAnswers{
			ExperienceYears: 6,
			TeamSize:        4,
			PriceRange:      "premium",
		},
	}
}
