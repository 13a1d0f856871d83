package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ptpcell/placement-backend/internal/database"
	"github.com/ptpcell/placement-backend/internal/importer"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/repository"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/worker"
	"github.com/spf13/cobra"
)

var seedNames = []string{
	"Aarav Sharma", "Ananya Iyer", "Rohan Verma", "Priya Nair", "Kabir Singh",
	"Isha Patel", "Arjun Reddy", "Meera Joshi", "Vivaan Gupta", "Diya Menon",
	"Aditya Rao", "Saanvi Kulkarni", "Reyansh Das", "Kavya Pillai", "Ishaan Bose",
	"Tara Chatterjee", "Dev Malhotra", "Nisha Bhat", "Krish Agarwal", "Riya Saxena",
}

func newStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Bulk student registry operations",
	}
	cmd.AddCommand(newSeedStudentsCmd())
	cmd.AddCommand(newImportStudentsCmd())
	return cmd
}

func newSeedStudentsCmd() *cobra.Command {
	var event string
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register demo students for an event without sending mail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive")
			}
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			students := service.NewStudentService(repository.NewStudentRepository(e.pool), nil)
			created := 0
			for i := 0; i < count; i++ {
				req := model.StudentRequest{
					Name:       seedNames[i%len(seedNames)],
					Email:      fmt.Sprintf("student%03d@example.edu", i+1),
					RollNumber: fmt.Sprintf("R%05d", i+1),
					Branch:     "CSE",
					EventName:  event,
				}
				if _, err := students.Create(cmd.Context(), req); err != nil {
					cmd.PrintErrf("skip %s: %v\n", req.Email, err)
					continue
				}
				created++
				if created%10 == 0 {
					cmd.Printf("Created %d students...\n", created)
				}
			}
			cmd.Printf("Seed completed, added %d/%d students to %q\n", created, count, event)
			return nil
		},
	}
	cmd.Flags().StringVar(&event, "event", "Campus Drive", "event name the students register for")
	cmd.Flags().IntVar(&count, "count", 50, "number of students")
	return cmd
}

func newImportStudentsCmd() *cobra.Command {
	var notify bool

	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Upsert students from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readRows(args[0])
			if err != nil {
				return err
			}
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			var mail service.MailQueue
			if notify {
				rdb, err := database.NewRedisClient(cmd.Context(), e.cfg, e.log)
				if err != nil {
					return fmt.Errorf("connect to Redis: %w", err)
				}
				defer rdb.Close()
				mail = worker.NewMailQueue(rdb)
			}

			students := service.NewStudentService(repository.NewStudentRepository(e.pool), mail)
			res, err := students.ImportRows(cmd.Context(), rows)
			if err != nil {
				return err
			}
			printImport(cmd, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "queue registration mail for newly inserted students")
	return cmd
}

func newAlumniCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alumni",
		Short: "Alumni directory operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Upsert alumni from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readRows(args[0])
			if err != nil {
				return err
			}
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := service.NewAlumniService(repository.NewAlumniRepository(e.pool)).ImportRows(cmd.Context(), rows)
			if err != nil {
				return err
			}
			printImport(cmd, res)
			return nil
		},
	})
	return cmd
}

func readRows(path string) ([]importer.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return importer.Parse(filepath.Base(path), f)
}

func printImport(cmd *cobra.Command, res *model.ImportResult) {
	cmd.Printf("Inserted %d, updated %d, skipped %d\n", res.Inserted, res.Updated, res.Skipped)
	for row, msg := range res.Errors {
		cmd.PrintErrf("  %s: %s\n", row, msg)
	}
}
