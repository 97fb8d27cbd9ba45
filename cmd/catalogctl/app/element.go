package app

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/odpi/egeria-sub150/pkg/catalog"
)

const defaultDeleteParallelism = 4

func newElementCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "element",
		Aliases: []string{"el"},
		Short:   "Create, read, update and delete metadata elements",
		Long: `Manage metadata elements. KIND is an element kind name or its collection,
e.g. DataFile or files. Run "catalogctl kinds" for the full list.`,
	}

	create := &cobra.Command{
		Use:   "create KIND",
		Short: "Create an element and print its GUID",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			elements, err := elementsFor(s, args[0])
			if err != nil {
				return err
			}
			props, err := parseProperties(cmd)
			if err != nil {
				return err
			}
			anchor, err := cmd.Flags().GetString("anchor")
			if err != nil {
				return err
			}

			var guid string
			if anchor != "" {
				guid, err = elements.CreateAnchored(cmd.Context(), s.userID, anchor, props)
			} else {
				guid, err = elements.Create(cmd.Context(), s.userID, props)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"guid": guid})
		}),
	}
	create.Flags().String("properties", "", "Element properties as a JSON object (qualifiedName is required)")
	create.Flags().String("anchor", "", "GUID of the anchor element")

	get := &cobra.Command{
		Use:   "get KIND GUID",
		Short: "Print an element",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			elements, err := elementsFor(s, args[0])
			if err != nil {
				return err
			}
			el, err := elements.Get(cmd.Context(), s.userID, args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), el)
		}),
	}

	update := &cobra.Command{
		Use:   "update KIND GUID",
		Short: "Update the properties of an element",
		Long: `Update the properties of an element. With --merge only the given properties
change; otherwise they replace all existing properties.`,
		Args: cobra.ExactArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			elements, err := elementsFor(s, args[0])
			if err != nil {
				return err
			}
			props, err := parseProperties(cmd)
			if err != nil {
				return err
			}
			merge, err := cmd.Flags().GetBool("merge")
			if err != nil {
				return err
			}
			return elements.Update(cmd.Context(), s.userID, args[1], merge, props)
		}),
	}
	update.Flags().String("properties", "", "Element properties as a JSON object")
	update.Flags().Bool("merge", false, "Merge the properties into the existing ones")

	del := &cobra.Command{
		Use:   "delete KIND GUID...",
		Short: "Delete elements and the elements anchored to them",
		Args:  cobra.MinimumNArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			elements, err := elementsFor(s, args[0])
			if err != nil {
				return err
			}
			parallel, err := cmd.Flags().GetInt("parallel")
			if err != nil {
				return err
			}
			return deleteElements(cmd, s, elements, args[1:], parallel)
		}),
	}
	del.Flags().Int("parallel", defaultDeleteParallelism, "Maximum number of concurrent delete requests")

	find := &cobra.Command{
		Use:   "find KIND NAME",
		Short: "Find elements whose qualified or display name matches the NAME regular expression",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			elements, err := elementsFor(s, args[0])
			if err != nil {
				return err
			}
			startFrom, pageSize, err := page(cmd)
			if err != nil {
				return err
			}
			stubs, err := elements.FindByName(cmd.Context(), s.userID, args[1], startFrom, pageSize)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stubs)
		}),
	}
	pageFlags(find)

	cmd.AddCommand(create, get, update, del, find)
	return cmd
}

func elementsFor(s *session, name string) (*catalog.AnyElements, error) {
	kind, ok := catalog.LookupElementKind(name)
	if !ok {
		return nil, fmt.Errorf("unknown element kind %q", name)
	}
	return s.owner.Elements(kind), nil
}

// deleteElements removes guids with at most parallel requests in flight.
// Every GUID is attempted; the first failure is returned.
func deleteElements(cmd *cobra.Command, s *session, elements *catalog.AnyElements, guids []string, parallel int) error {
	if parallel < 1 {
		parallel = 1
	}

	var mu sync.Mutex
	deleted := make([]string, 0, len(guids))
	g := new(errgroup.Group)
	g.SetLimit(parallel)
	for _, guid := range guids {
		g.Go(func() error {
			if err := elements.Delete(cmd.Context(), s.userID, guid); err != nil {
				s.logger.Error("Failed to delete element", "guid", guid, "error", err)
				return fmt.Errorf("delete %s: %w", guid, err)
			}
			mu.Lock()
			deleted = append(deleted, guid)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	s.logger.Info("Deleted elements", "requested", len(guids), "deleted", len(deleted))
	if writeErr := writeJSON(cmd.OutOrStdout(), map[string][]string{"deleted": deleted}); writeErr != nil && err == nil {
		err = writeErr
	}
	return err
}
