package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/catalog"
)

func newRelationshipCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "Link, unlink and list relationships between elements",
		Long: `Manage relationships. KIND is a relationship name or its collection, e.g.
MoreInformation or more-information. Kinds that allow several instances between
the same two elements return and accept relationship GUIDs.`,
	}

	link := &cobra.Command{
		Use:   "link KIND PRIMARY_GUID SECONDARY_GUID",
		Short: "Create a relationship, or update the properties of an existing one",
		Args:  cobra.ExactArgs(3),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			kind, err := relationshipKind(args[0])
			if err != nil {
				return err
			}
			props, err := parseProperties(cmd)
			if err != nil {
				return err
			}

			if !kind.MultiLink {
				return catalog.NewUniLink[api.PropertyMap](s.owner.Client, kind).
					Link(cmd.Context(), s.userID, args[1], args[2], props)
			}
			guid, err := catalog.NewMultiLink[api.PropertyMap](s.owner.Client, kind).
				Link(cmd.Context(), s.userID, args[1], args[2], props)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"relationshipGUID": guid})
		}),
	}
	link.Flags().String("properties", "", "Relationship properties as a JSON object")

	unlink := &cobra.Command{
		Use:   "unlink KIND (PRIMARY_GUID SECONDARY_GUID | RELATIONSHIP_GUID)",
		Short: "Remove a relationship",
		Args:  cobra.RangeArgs(2, 3),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			kind, err := relationshipKind(args[0])
			if err != nil {
				return err
			}

			if kind.MultiLink {
				if len(args) != 2 {
					return fmt.Errorf("%s relationships are removed by relationship GUID", kind.Name)
				}
				return catalog.NewMultiLink[api.PropertyMap](s.owner.Client, kind).
					Unlink(cmd.Context(), s.userID, args[1])
			}
			if len(args) != 3 {
				return fmt.Errorf("%s relationships are removed by primary and secondary GUID", kind.Name)
			}
			return catalog.NewUniLink[api.PropertyMap](s.owner.Client, kind).
				Unlink(cmd.Context(), s.userID, args[1], args[2])
		}),
	}

	update := &cobra.Command{
		Use:   "update KIND RELATIONSHIP_GUID",
		Short: "Update the properties of one relationship instance",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			kind, err := relationshipKind(args[0])
			if err != nil {
				return err
			}
			if !kind.MultiLink {
				return fmt.Errorf("%s relationships are updated with link", kind.Name)
			}
			props, err := parseProperties(cmd)
			if err != nil {
				return err
			}
			merge, err := cmd.Flags().GetBool("merge")
			if err != nil {
				return err
			}
			return catalog.NewMultiLink[api.PropertyMap](s.owner.Client, kind).
				Update(cmd.Context(), s.userID, args[1], merge, props)
		}),
	}
	update.Flags().String("properties", "", "Relationship properties as a JSON object")
	update.Flags().Bool("merge", false, "Merge the properties into the existing ones")

	list := &cobra.Command{
		Use:   "list KIND GUID",
		Short: "List the elements related to GUID",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			kind, err := relationshipKind(args[0])
			if err != nil {
				return err
			}
			startFrom, pageSize, err := page(cmd)
			if err != nil {
				return err
			}
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}

			templates := kind.Templates(s.owner.ServiceRoot())
			if !all {
				related, err := s.owner.GetRelatedElements(cmd.Context(), s.userID, args[1], templates.List,
					startFrom, pageSize)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), related)
			}

			related := []api.RelatedElementStub{}
			for stub, err := range s.owner.AllRelatedElements(cmd.Context(), s.userID, args[1], templates.List,
				pageSize) {
				if err != nil {
					return err
				}
				related = append(related, stub)
			}
			return writeJSON(cmd.OutOrStdout(), related)
		}),
	}
	pageFlags(list)
	list.Flags().Bool("all", false, "Follow every page; --start is ignored")

	cmd.AddCommand(link, unlink, update, list)
	return cmd
}

func relationshipKind(name string) (catalog.RelationshipKind, error) {
	kind, ok := catalog.LookupRelationshipKind(name)
	if !ok {
		return catalog.RelationshipKind{}, fmt.Errorf("unknown relationship kind %q", name)
	}
	return kind, nil
}
