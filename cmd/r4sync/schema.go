package main

import (
	"fmt"

	"github.com/chairside/r4sync/internal/ioschema"
	"github.com/spf13/cobra"
)

var schemaForce bool

func getSchemaCmd() *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the destination support schema",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the destination schema from scratch",
		Long: `Create builds the migration support schema (snapshot tables,
patient mappings, linkage issues, canonical charting records) in the
destination database. With --force any existing tables are dropped
first.`,
		RunE: runSchemaCreate,
	}
	createCmd.Flags().BoolVar(&schemaForce, "force", false,
		"drop existing tables before creating the schema")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Update the destination schema to the latest version",
		Long: `Migrate brings an existing destination schema up to date. It only
adds tables and columns; it is safe to run repeatedly and between
r4sync versions.`,
		RunE: runSchemaMigrate,
	}

	schemaCmd.AddCommand(createCmd)
	schemaCmd.AddCommand(migrateCmd)
	return schemaCmd
}

func runSchemaCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	hasTables, err := a.op.HasTables(ctx)
	if err != nil {
		return err
	}
	if hasTables {
		if !schemaForce {
			return fmt.Errorf(
				"database %q is not empty, use 'schema migrate' to update it or --force to recreate it",
				getConfig().Database.Database)
		}
		fmt.Println("Dropping existing tables...")
		if err := a.op.DropAllTables(ctx); err != nil {
			return err
		}
	}

	fmt.Println("Creating destination schema...")
	if err := ioschema.NewManager(a.op).Create(ctx); err != nil {
		return err
	}

	fmt.Println("✓ Schema created successfully!")
	return nil
}

func runSchemaMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Migrating destination schema...")
	if err := ioschema.NewManager(a.op).Migrate(ctx); err != nil {
		return err
	}

	fmt.Println("✓ Schema migration complete!")
	return nil
}
