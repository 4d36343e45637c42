package services

import (
	"errors"

	"tableside/repository"
)

// Command types. Voice transcription and the manual UI both funnel through
// Dispatch; the only difference voice gets is ForceAdd.
const (
	CmdAddItem     = "add_item"
	CmdPlaceOrder  = "place_order"
	CmdPay         = "pay"
	CmdPrintKot    = "print_kot"
	CmdCancel      = "cancel"
	CmdAddCustomer = "add_customer"
)

var ErrUnknownCommand = errors.New("unknown command type")

// Command is one structured intent against a table.
type Command struct {
	Type    string `json:"type" binding:"required,oneof=add_item place_order pay print_kot cancel add_customer"`
	VenueID uint   `json:"venueId" binding:"required"`
	TableID uint   `json:"tableId" binding:"required"`
	StaffID uint   `json:"staffId"`

	// add_item; ForceAdd skips the cart-open guard so voice can inject
	// items regardless of lifecycle state
	Item     *AddToCartIn `json:"item,omitempty"`
	ForceAdd bool         `json:"forceAdd"`

	// place_order / cancel
	Notes  string `json:"notes"`
	Reason string `json:"reason"`

	// pay
	Payment *PaymentInstruction `json:"payment,omitempty"`

	// add_customer
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
}

type CommandDispatcher struct {
	Orders    *OrderService
	Carts     *CartService
	MenuRepo  *repository.MenuRepository
	TableRepo *repository.TableRepository
}

func NewCommandDispatcher(orders *OrderService, carts *CartService, mr *repository.MenuRepository, tr *repository.TableRepository) *CommandDispatcher {
	return &CommandDispatcher{Orders: orders, Carts: carts, MenuRepo: mr, TableRepo: tr}
}

// Dispatch routes a command into the same entry points the HTTP handlers
// use. The result shape depends on the command type.
func (d *CommandDispatcher) Dispatch(cmd Command) (any, error) {
	switch cmd.Type {
	case CmdAddItem:
		if cmd.Item == nil {
			return nil, errors.New("add_item requires an item")
		}
		if err := d.Orders.GuardCartOpen(cmd.VenueID, cmd.TableID, cmd.ForceAdd); err != nil {
			return nil, err
		}
		return nil, d.Carts.Add(cmd.VenueID, cmd.TableID, cmd.Item)

	case CmdPlaceOrder:
		placed, err := d.Orders.PlaceOrder(cmd.VenueID, cmd.TableID, cmd.StaffID, cmd.Notes)
		if err != nil {
			return nil, err
		}
		doc, err := d.kitchenTicket(placed)
		if err != nil {
			return placed, err
		}
		return struct {
			*PlacedOrder
			Ticket Document `json:"ticket"`
		}{placed, doc}, nil

	case CmdPay:
		if cmd.Payment == nil {
			return nil, errors.New("pay requires a payment instruction")
		}
		settled, err := d.Orders.HandlePayment(cmd.VenueID, cmd.TableID, *cmd.Payment)
		if err != nil {
			return nil, err
		}
		doc, err := d.bill(cmd.VenueID, cmd.TableID, settled)
		if err != nil {
			return settled, err
		}
		return struct {
			*SettledPayment
			Bill Document `json:"bill"`
		}{settled, doc}, nil

	case CmdPrintKot:
		return d.reprintKot(cmd.VenueID, cmd.TableID)

	case CmdCancel:
		return nil, d.Orders.CancelAllOrders(cmd.VenueID, cmd.TableID, cmd.StaffID, cmd.Reason)

	case CmdAddCustomer:
		return nil, d.Orders.AttachCustomer(cmd.VenueID, cmd.TableID, cmd.CustomerID, cmd.CustomerName)
	}
	return nil, ErrUnknownCommand
}

func (d *CommandDispatcher) kitchenTicket(placed *PlacedOrder) (Document, error) {
	venue, err := d.MenuRepo.GetVenue(placed.Order.VenueID)
	if err != nil {
		return Document{}, err
	}
	table, err := d.TableRepo.Get(placed.Order.VenueID, placed.Order.TableID)
	if err != nil {
		return Document{}, err
	}
	return BuildKitchenTicket(placed.Order, placed.Items, venue, table, placed.AdditionalRound), nil
}

func (d *CommandDispatcher) bill(venueID, tableID uint, settled *SettledPayment) (Document, error) {
	venue, err := d.MenuRepo.GetVenue(venueID)
	if err != nil {
		return Document{}, err
	}
	table, err := d.TableRepo.Get(venueID, tableID)
	if err != nil {
		return Document{}, err
	}
	ids := make([]uint, len(settled.Orders))
	for i := range settled.Orders {
		ids[i] = settled.Orders[i].ID
	}
	items, err := d.Orders.Repo.GetOrderItemsForOrders(ids)
	if err != nil {
		return Document{}, err
	}
	return BuildBill(settled, items, venue, table), nil
}

// reprintKot rebuilds the ticket for the table's current order.
func (d *CommandDispatcher) reprintKot(venueID, tableID uint) (Document, error) {
	sess, err := d.Orders.Session(venueID, tableID)
	if err != nil {
		return Document{}, err
	}
	sess.mu.Lock()
	orderID := sess.CurrentOrderID
	sess.mu.Unlock()
	if orderID == 0 {
		return Document{}, ErrNotPlaced
	}
	order, err := d.Orders.Repo.GetOrder(venueID, orderID)
	if err != nil {
		return Document{}, err
	}
	items, err := d.Orders.Repo.GetOrderItems(orderID)
	if err != nil {
		return Document{}, err
	}
	venue, err := d.MenuRepo.GetVenue(venueID)
	if err != nil {
		return Document{}, err
	}
	table, err := d.TableRepo.Get(venueID, tableID)
	if err != nil {
		return Document{}, err
	}
	return BuildKitchenTicket(order, items, venue, table, false), nil
}
