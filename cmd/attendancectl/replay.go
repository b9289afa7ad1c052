package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mruput.io/application/controller/dto"
	"mruput.io/application/services/verification"
	attendance_usecases "mruput.io/application/usecases/attendance"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/config"
	"mruput.io/infrastructure/geolocation"
	"mruput.io/infrastructure/recordsink"
	"mruput.io/infrastructure/validator"
)

// replayFile is a recorded attempt plus what the server would normally look
// up: the employee's reference face and the office.
type replayFile struct {
	UserID           string              `json:"userId" validate:"required"`
	SessionID        string              `json:"sessionId"`
	Office           *geolocation.Office `json:"office"`
	EnrolledEncoding []float64           `json:"enrolledEncoding" validate:"required_without=EnrollmentImage,omitempty,len=128"`
	EnrollmentImage  string              `json:"enrollmentImage" validate:"omitempty,still_image"`
	dto.VerifyRecordedAttemptDTO
}

func parseReplayFile(raw []byte) (*replayFile, error) {
	var file replayFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("invalid replay file: %w", err)
	}
	if errs := validator.ValidatorInstance.ValidateStruct(&file); errs != nil {
		return nil, errors.Join(*errs...)
	}
	return &file, nil
}

type staticEnrollment struct {
	embedding types.FaceEmbedding
}

func (s staticEnrollment) GetEnrolledEmbedding(ctx context.Context, userID string) (types.FaceEmbedding, error) {
	if len(s.embedding) == 0 {
		return nil, verification.ErrEnrollmentNotFound
	}
	return s.embedding, nil
}

type staticOffices struct {
	office *geolocation.Office
}

func (s staticOffices) FindOffice(ctx context.Context, officeID string) (*geolocation.Office, error) {
	if s.office == nil || s.office.ID != officeID {
		return nil, nil
	}
	return s.office, nil
}

// replay runs the file through the same path as POST /attendance/verify.
func replay(ctx context.Context, file *replayFile, faces types.FaceService, policy verification.Policy, sink verification.RecordSink) (*verification.Decision, error) {
	enrolled := types.FromFloat64(file.EnrolledEncoding)
	if len(enrolled) == 0 {
		image, err := utils.DecodeBase64Image(file.EnrollmentImage)
		if err != nil {
			return nil, err
		}
		if enrolled, err = faces.Enroll(ctx, image); err != nil {
			return nil, fmt.Errorf("enrolling reference image: %w", err)
		}
	}

	stills := make([][]byte, 0, len(file.Stills))
	for _, encoded := range file.Stills {
		image, err := utils.DecodeBase64Image(encoded)
		if err != nil {
			return nil, err
		}
		stills = append(stills, image)
	}
	now := time.Now()
	reports := make([]geolocation.FixReport, 0, len(file.Locations))
	for i := range file.Locations {
		reports = append(reports, file.Locations[i].ToReport(now))
	}

	officeID := file.OfficeID
	if officeID == "" && file.Office != nil {
		officeID = file.Office.ID
	}
	service := attendance_usecases.NewService(&verification.Orchestrator{
		Policy:      policy,
		Faces:       faces,
		Enrollments: staticEnrollment{embedding: enrolled},
		Sink:        sink,
	}, staticOffices{office: file.Office}, nil, time.Minute)
	return service.EvaluateRecorded(ctx, attendance_usecases.RecordedInput{
		UserID:    file.UserID,
		SessionID: file.SessionID,
		OfficeID:  officeID,
		WorkMode:  geolocation.WorkMode(file.WorkMode),
		Frames:    file.Frames,
		Stills:    stills,
		Locations: reports,
		Metadata:  verification.AttemptMetadata{UserAgent: "attendancectl"},
	})
}

func newReplayCommand() *cobra.Command {
	var (
		journalPath string
		faceURL     string
	)
	cmd := &cobra.Command{
		Use:   "replay <attempt.json>",
		Short: "Evaluate a recorded attempt offline and print the decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			file, err := parseReplayFile(raw)
			if err != nil {
				return err
			}
			policy, err := config.LoadPolicy()
			if err != nil {
				return err
			}

			settings := config.LoadSettings()
			if faceURL != "" {
				settings.FaceServiceURL = faceURL
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := biometric.InitialiseBiometricService(ctx, biometric.Options{
				Backend: string(settings.FaceBackend),
				BaseURL: settings.FaceServiceURL,
				APIKey:  settings.FaceServiceKey,
				Timeout: settings.FaceTimeout,
				Retries: settings.FaceRetries,
			}); err != nil {
				return err
			}

			var sink verification.RecordSink
			if journalPath != "" {
				journal, err := recordsink.OpenJournal(journalPath)
				if err != nil {
					return err
				}
				defer journal.Close()
				sink = journal
			}

			decision, err := replay(ctx, file, biometric.FaceService, policy, sink)
			if decision == nil {
				return err
			}
			out, marshalErr := json.MarshalIndent(decision, "", "  ")
			if marshalErr != nil {
				return marshalErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&journalPath, "journal", "", "record the decision in this sqlite journal")
	cmd.Flags().StringVar(&faceURL, "face-url", "", "face service base url, overrides FACE_SERVICE_URL")
	return cmd
}
